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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if got, want := cfg.Location, "us-central1"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
	if got, want := cfg.AppLocation, "global"; got != want {
		t.Errorf("AppLocation = %q, want %q", got, want)
	}
	if got, want := cfg.Storage.DefaultStorageClass, "STANDARD"; got != want {
		t.Errorf("Storage.DefaultStorageClass = %q, want %q", got, want)
	}
	if got, want := cfg.RAG.EmbeddingModel, "text-multilingual-embedding-002"; got != want {
		t.Errorf("RAG.EmbeddingModel = %q, want %q", got, want)
	}
	if got, want := cfg.RAG.DistanceThreshold, 0.5; got != want {
		t.Errorf("RAG.DistanceThreshold = %v, want %v", got, want)
	}
	if got, want := cfg.Search.ServingConfigID, "default_config"; got != want {
		t.Errorf("Search.ServingConfigID = %q, want %q", got, want)
	}
	if got, want := cfg.Agent.Model, "gemini-2.5-flash"; got != want {
		t.Errorf("Agent.Model = %q, want %q", got, want)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("project_id: file-project\nlocation: europe-west4\nrag:\n  top_k: 20\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "asia-northeast1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := cfg.ProjectID, "env-project"; got != want {
		t.Errorf("ProjectID = %q, want %q", got, want)
	}
	if got, want := cfg.Location, "asia-northeast1"; got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
	if got, want := cfg.RAG.TopK, 20; got != want {
		t.Errorf("RAG.TopK = %d, want %d", got, want)
	}
	// Fields absent from the file keep their defaults.
	if got, want := cfg.RAG.SearchTopK, 5; got != want {
		t.Errorf("RAG.SearchTopK = %d, want %d", got, want)
	}
}

func TestLoad_MissingProject(t *testing.T) {
	t.Setenv("CORPUSAGENT_CONFIG", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	os.Unsetenv("GOOGLE_CLOUD_PROJECT")

	if _, err := Load(""); err == nil {
		t.Error("Load() with no project id succeeded, want error")
	}
}

func TestResourceNames(t *testing.T) {
	cfg := Default()
	cfg.ProjectID = "demo"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "rag_parent",
			got:  cfg.RAGParent(),
			want: "projects/demo/locations/us-central1",
		},
		{
			name: "search_collection",
			got:  cfg.SearchCollection(),
			want: "projects/demo/locations/global/collections/default_collection",
		},
		{
			name: "corpus_from_id",
			got:  cfg.CorpusResourceName("my-corpus"),
			want: "projects/demo/locations/us-central1/ragCorpora/my-corpus",
		},
		{
			name: "corpus_already_qualified",
			got:  cfg.CorpusResourceName("projects/p/locations/l/ragCorpora/c"),
			want: "projects/p/locations/l/ragCorpora/c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
