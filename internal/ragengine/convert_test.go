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

import (
	"testing"
	"time"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestCorpusFromPb(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	pb := &aiplatformpb.RagCorpus{
		Name:        "projects/p/locations/us-central1/ragCorpora/docs",
		DisplayName: "Docs",
		Description: "Team documents",
		CreateTime:  timestamppb.New(created),
		CorpusStatus: &aiplatformpb.CorpusStatus{
			State: aiplatformpb.CorpusStatus_INITIALIZED,
		},
		RagVectorDbConfig: vectorDbConfigPb("text-multilingual-embedding-002"),
	}

	got := corpusFromPb(pb)
	want := &Corpus{
		Name:           "projects/p/locations/us-central1/ragCorpora/docs",
		DisplayName:    "Docs",
		Description:    "Team documents",
		EmbeddingModel: "publishers/google/models/text-multilingual-embedding-002",
		State:          CorpusStateActive,
		CreateTime:     &created,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("corpusFromPb() mismatch (-want +got):\n%s", diff)
	}
}

func TestCorpusFromPb_ErrorState(t *testing.T) {
	pb := &aiplatformpb.RagCorpus{
		Name: "projects/p/locations/l/ragCorpora/broken",
		CorpusStatus: &aiplatformpb.CorpusStatus{
			State: aiplatformpb.CorpusStatus_ERROR,
		},
	}
	if got := corpusFromPb(pb); got.State != CorpusStateError {
		t.Errorf("corpusFromPb().State = %q, want %q", got.State, CorpusStateError)
	}
}

func TestFileFromPb(t *testing.T) {
	pb := &aiplatformpb.RagFile{
		Name:        "projects/p/locations/l/ragCorpora/docs/ragFiles/f1",
		DisplayName: "q1.pdf",
		SizeBytes:   1024,
		FileStatus: &aiplatformpb.FileStatus{
			State: aiplatformpb.FileStatus_ACTIVE,
		},
		RagFileSource: &aiplatformpb.RagFile_GcsSource{
			GcsSource: &aiplatformpb.GcsSource{
				Uris: []string{"gs://docs/q1.pdf"},
			},
		},
	}

	got := fileFromPb(pb)
	want := &File{
		Name:        "projects/p/locations/l/ragCorpora/docs/ragFiles/f1",
		DisplayName: "q1.pdf",
		SizeBytes:   1024,
		State:       FileStateActive,
		SourceURIs:  []string{"gs://docs/q1.pdf"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fileFromPb() mismatch (-want +got):\n%s", diff)
	}
}

func TestContextsFromPb(t *testing.T) {
	resp := &aiplatformpb.RetrieveContextsResponse{
		Contexts: &aiplatformpb.RagContexts{
			Contexts: []*aiplatformpb.RagContexts_Context{
				{
					Text:              "first chunk",
					SourceUri:         "gs://docs/q1.pdf",
					SourceDisplayName: "q1.pdf",
					Distance:          0.12,
				},
				{
					Text: "second chunk",
				},
			},
		},
	}

	got := contextsFromPb(resp)
	want := []*Context{
		{Text: "first chunk", SourceURI: "gs://docs/q1.pdf", SourceDisplayName: "q1.pdf", Distance: 0.12},
		{Text: "second chunk"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contextsFromPb() mismatch (-want +got):\n%s", diff)
	}
}

func TestContextsFromPb_Empty(t *testing.T) {
	if got := contextsFromPb(&aiplatformpb.RetrieveContextsResponse{}); got != nil {
		t.Errorf("contextsFromPb(empty) = %v, want nil", got)
	}
}
