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

// Package ragagent assembles the corpus manager agent: one LLM agent
// carrying the storage, corpus, and search toolsets.
package ragagent

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/tool"
	"google.golang.org/genai"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/gcs"
	"github.com/ragops/corpusagent/internal/ragengine"
	"github.com/ragops/corpusagent/internal/searchengine"
	"github.com/ragops/corpusagent/tools/corpustools"
	"github.com/ragops/corpusagent/tools/searchtools"
	"github.com/ragops/corpusagent/tools/storagetools"
)

const instruction = `You are a document corpus manager for Google Cloud. You manage Cloud
Storage buckets, Vertex AI RAG corpora, and Vertex AI Search apps on the
user's behalf.

Capabilities:
- Cloud Storage: create buckets, list buckets and objects, inspect a
  bucket, and upload files (create_gcs_bucket, list_gcs_buckets,
  get_gcs_bucket_details, upload_file_gcs, list_gcs_blobs).
- RAG corpora: create, update, list, inspect, and delete corpora; import
  documents from gs:// URIs; manage the files in a corpus
  (create_corpus, update_corpus, list_corpora, get_corpus,
  delete_corpus, import_document, list_files, get_file, delete_file).
- Retrieval: answer questions from one corpus with query_rag_corpus, or
  across every corpus with search_all_corpora.
- Vertex AI Search: list the available engines, and search an engine
  with summarization (list_search_engines, vertex_search). When the
  user does not name an engine, call select_and_compile first to pick
  one and build the query.

Rules:
- When a question should be answered from ingested documents, retrieve
  first and answer strictly from the returned contexts. Cite the source
  of every claim.
- Destructive operations (delete_corpus, delete_file) are irreversible.
  Ask the user to confirm, and only then call the tool with
  confirm=true.
- Documents must be in Cloud Storage before import. If the user has a
  local file, upload it with upload_file_gcs first, then import the
  resulting gs:// URI.
- Report tool errors to the user plainly, with the failing resource
  name, and suggest the next step.`

// Toolset is the common surface of the tool packages.
type Toolset interface {
	Tools() ([]tool.Tool, error)
}

// CollectTools flattens the toolsets into one tool list.
func CollectTools(toolsets ...Toolset) ([]tool.Tool, error) {
	var all []tool.Tool
	for _, ts := range toolsets {
		tools, err := ts.Tools()
		if err != nil {
			return nil, err
		}
		all = append(all, tools...)
	}
	return all, nil
}

// Build assembles the agent from an already-created model and tool list.
func Build(cfg *config.Config, m model.LLM, tools []tool.Tool) (agent.Agent, error) {
	return llmagent.New(llmagent.Config{
		Name:        cfg.Agent.Name,
		Model:       m,
		Description: "Manages Cloud Storage buckets, Vertex AI RAG corpora, and Vertex AI Search apps, and answers questions from the ingested documents.",
		Instruction: instruction,
		Tools:       tools,
	})
}

// New creates the cloud services, the toolsets, the Gemini model, and
// the assembled agent. The returned cleanup closes the service clients.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (agent.Agent, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gcsSvc, err := gcs.NewService(ctx, cfg.ProjectID, gcs.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	ragSvc, err := ragengine.NewService(ctx, cfg.ProjectID, cfg.Location, ragengine.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create rag engine service: %w", err)
	}
	searchSvc, err := searchengine.NewService(ctx, cfg.ProjectID, cfg.AppLocation, searchengine.WithLogger(logger))
	if err != nil {
		ragSvc.Close()
		return nil, nil, fmt.Errorf("failed to create search service: %w", err)
	}
	cleanup := func() error {
		ragErr := ragSvc.Close()
		if err := searchSvc.Close(); err != nil && ragErr == nil {
			ragErr = err
		}
		return ragErr
	}

	tools, err := CollectTools(
		storagetools.New(cfg, gcsSvc, logger),
		corpustools.New(cfg, ragSvc, logger),
		searchtools.New(cfg, searchSvc, logger),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	m, err := gemini.NewModel(ctx, cfg.Agent.Model, clientConfig(cfg))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create model: %w", err)
	}

	a, err := Build(cfg, m, tools)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	logger.InfoContext(ctx, "agent assembled",
		slog.String("agent", cfg.Agent.Name),
		slog.String("model", cfg.Agent.Model),
		slog.Int("tools", len(tools)),
	)
	return a, cleanup, nil
}

// clientConfig routes the model through the Gemini API when an API key
// is present, and through Vertex AI otherwise.
func clientConfig(cfg *config.Config) *genai.ClientConfig {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return &genai.ClientConfig{APIKey: key}
	}
	return &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.ProjectID,
		Location: cfg.Location,
	}
}
