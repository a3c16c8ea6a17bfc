// Copyright 2025 The Corpusagent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the central defaults for the corpus agent: Google
// Cloud project settings, Cloud Storage defaults, Vertex AI RAG Engine
// defaults, and Vertex AI Search defaults. Tools apply these whenever a
// caller omits an optional parameter.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage holds Cloud Storage defaults.
type Storage struct {
	// DefaultLocation is the bucket location used when none is given.
	DefaultLocation string `yaml:"default_location"`
	// DefaultStorageClass is the storage class for new buckets.
	DefaultStorageClass string `yaml:"default_storage_class"`
	// DefaultContentType is applied to uploads without an explicit type.
	DefaultContentType string `yaml:"default_content_type"`
	// ListBucketsMaxResults caps bucket listings.
	ListBucketsMaxResults int `yaml:"list_buckets_max_results"`
	// ListBlobsMaxResults caps blob listings.
	ListBlobsMaxResults int `yaml:"list_blobs_max_results"`
}

// RAG holds Vertex AI RAG Engine defaults.
type RAG struct {
	// EmbeddingModel is the publisher embedding model for new corpora.
	EmbeddingModel string `yaml:"embedding_model"`
	// TopK is the result count for a single-corpus query.
	TopK int `yaml:"top_k"`
	// SearchTopK is the per-corpus result count for search_all_corpora.
	SearchTopK int `yaml:"search_top_k"`
	// DistanceThreshold is the vector distance cutoff for retrieval.
	DistanceThreshold float64 `yaml:"distance_threshold"`
	// PageSize is the page size for file listings.
	PageSize int `yaml:"page_size"`
}

// Search holds Vertex AI Search (Discovery Engine) defaults.
type Search struct {
	// ServingConfigID names the serving config within an engine.
	ServingConfigID string `yaml:"serving_config_id"`
	// PageSize is the search result page size.
	PageSize int `yaml:"page_size"`

	// SummaryResultCount is how many results feed the summary.
	SummaryResultCount int `yaml:"summary_result_count"`
	// IncludeCitations toggles summary citations.
	IncludeCitations bool `yaml:"include_citations"`
	// UseSemanticChunks toggles semantic chunking for the summary.
	UseSemanticChunks bool `yaml:"use_semantic_chunks"`
	// SummaryModelVersion selects the summarization model version.
	SummaryModelVersion string `yaml:"summary_model_version"`
	// SummaryPreamble is the summarization prompt preamble.
	SummaryPreamble string `yaml:"summary_preamble"`

	// MaxSnippetCount caps snippets per result.
	MaxSnippetCount int `yaml:"max_snippet_count"`
	// MaxExtractiveAnswerCount caps extractive answers per result.
	MaxExtractiveAnswerCount int `yaml:"max_extractive_answer_count"`
	// MaxExtractiveSegmentCount caps extractive segments per result.
	MaxExtractiveSegmentCount int `yaml:"max_extractive_segment_count"`

	// QueryExpansion is "AUTO" or "DISABLED".
	QueryExpansion string `yaml:"query_expansion"`
	// SpellCorrection is "AUTO" or "DISABLED".
	SpellCorrection string `yaml:"spell_correction"`
}

// Agent holds root agent settings.
type Agent struct {
	// Name is the agent name.
	Name string `yaml:"name"`
	// Model is the Gemini model id the agent runs on.
	Model string `yaml:"model"`
	// OutputKey is the session state key for the final response.
	OutputKey string `yaml:"output_key"`
}

// Config is the full configuration for the corpus agent.
type Config struct {
	// ProjectID is the Google Cloud project. Required.
	ProjectID string `yaml:"project_id"`
	// Location is the region for Vertex AI and GCS resources.
	Location string `yaml:"location"`
	// AppLocation is the region for Vertex AI Search apps.
	AppLocation string `yaml:"app_location"`

	Storage Storage `yaml:"storage"`
	RAG     RAG     `yaml:"rag"`
	Search  Search  `yaml:"search"`
	Agent   Agent   `yaml:"agent"`
}

// Default returns a Config populated with the stock defaults. The project
// id is left empty; callers fill it from the environment or a file.
func Default() *Config {
	return &Config{
		Location:    "us-central1",
		AppLocation: "global",
		Storage: Storage{
			DefaultLocation:       "US",
			DefaultStorageClass:   "STANDARD",
			DefaultContentType:    "application/pdf",
			ListBucketsMaxResults: 50,
			ListBlobsMaxResults:   100,
		},
		RAG: RAG{
			EmbeddingModel:    "text-multilingual-embedding-002",
			TopK:              10,
			SearchTopK:        5,
			DistanceThreshold: 0.5,
			PageSize:          50,
		},
		Search: Search{
			ServingConfigID:           "default_config",
			PageSize:                  10,
			SummaryResultCount:        3,
			IncludeCitations:          true,
			UseSemanticChunks:         true,
			SummaryModelVersion:       "stable",
			SummaryPreamble:           defaultSummaryPreamble,
			MaxSnippetCount:           5,
			MaxExtractiveAnswerCount:  3,
			MaxExtractiveSegmentCount: 3,
			QueryExpansion:            "AUTO",
			SpellCorrection:           "AUTO",
		},
		Agent: Agent{
			Name:      "rag_corpus_manager",
			Model:     "gemini-2.5-flash",
			OutputKey: "last_response",
		},
	}
}

const defaultSummaryPreamble = "You are an assistant that summarizes search results for the user.\n" +
	"- Always include the important findings in the summary.\n" +
	"- Do not pad the summary with decorative symbols.\n"

// Load builds the configuration: stock defaults, then an optional YAML
// file (path from CORPUSAGENT_CONFIG unless given explicitly), then
// environment variables. Environment always wins.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CORPUSAGENT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("GOOGLE_CLOUD_PROJECT"); ok {
		c.ProjectID = v
	}
	if v, ok := os.LookupEnv("GOOGLE_CLOUD_LOCATION"); ok {
		c.Location = v
	}
	if v, ok := os.LookupEnv("GOOGLE_APP_LOCATION"); ok {
		c.AppLocation = v
	}
}

// Validate reports configuration errors that would make every cloud call
// fail anyway.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project id is not set: set GOOGLE_CLOUD_PROJECT or project_id in the config file")
	}
	if c.Location == "" {
		return fmt.Errorf("location must not be empty")
	}
	if c.AppLocation == "" {
		c.AppLocation = "global"
	}
	return nil
}

// RAGParent returns the resource parent for RAG corpora.
func (c *Config) RAGParent() string {
	return fmt.Sprintf("projects/%s/locations/%s", c.ProjectID, c.Location)
}

// SearchCollection returns the default collection resource name for
// Vertex AI Search engines.
func (c *Config) SearchCollection() string {
	return fmt.Sprintf("projects/%s/locations/%s/collections/default_collection", c.ProjectID, c.AppLocation)
}

// CorpusResourceName expands a bare corpus id into a full resource name.
// Names that already look fully qualified are returned unchanged.
func (c *Config) CorpusResourceName(corpus string) string {
	if corpus == "" {
		return ""
	}
	if len(corpus) > len("projects/") && corpus[:len("projects/")] == "projects/" {
		return corpus
	}
	return fmt.Sprintf("%s/ragCorpora/%s", c.RAGParent(), corpus)
}
