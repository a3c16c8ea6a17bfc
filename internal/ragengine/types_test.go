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

package ragengine

import "testing"

func TestPublisherModel(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  string
	}{
		{
			name:  "bare_id",
			model: "text-multilingual-embedding-002",
			want:  "publishers/google/models/text-multilingual-embedding-002",
		},
		{
			name:  "already_publisher_path",
			model: "publishers/google/models/text-embedding-005",
			want:  "publishers/google/models/text-embedding-005",
		},
		{
			name:  "custom_endpoint",
			model: "projects/p/locations/l/endpoints/e",
			want:  "projects/p/locations/l/endpoints/e",
		},
		{
			name:  "empty",
			model: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublisherModel(tt.model); got != tt.want {
				t.Errorf("PublisherModel(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestValidateCorpusName(t *testing.T) {
	tests := []struct {
		name    string
		corpus  string
		wantErr bool
	}{
		{name: "valid", corpus: "projects/p/locations/us-central1/ragCorpora/c"},
		{name: "bare_id", corpus: "my-corpus", wantErr: true},
		{name: "file_name", corpus: "projects/p/locations/l/ragCorpora/c/ragFiles/f", wantErr: true},
		{name: "empty", corpus: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCorpusName(tt.corpus)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCorpusName(%q) error = %v, wantErr %v", tt.corpus, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileName(t *testing.T) {
	if err := ValidateFileName("projects/p/locations/l/ragCorpora/c/ragFiles/f"); err != nil {
		t.Errorf("ValidateFileName(valid) error = %v", err)
	}
	if err := ValidateFileName("projects/p/locations/l/ragCorpora/c"); err == nil {
		t.Error("ValidateFileName(corpus name) succeeded, want error")
	}
}

func TestCorpusID(t *testing.T) {
	if got, want := CorpusID("projects/p/locations/l/ragCorpora/my-corpus"), "my-corpus"; got != want {
		t.Errorf("CorpusID() = %q, want %q", got, want)
	}
	if got, want := CorpusID("bare"), "bare"; got != want {
		t.Errorf("CorpusID() = %q, want %q", got, want)
	}
}
