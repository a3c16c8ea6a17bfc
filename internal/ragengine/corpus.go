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
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/api/iterator"
)

// CreateCorpus creates a corpus on the managed vector database with the
// given embedding model (bare model id or publisher path).
func (s *Service) CreateCorpus(ctx context.Context, displayName, description, embeddingModel string) (*Corpus, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.CreateCorpus")
	defer span.End()

	if displayName == "" {
		return nil, fmt.Errorf("corpus display name must not be empty")
	}

	s.logger.InfoContext(ctx, "Creating RAG corpus",
		slog.String("parent", s.Parent()),
		slog.String("display_name", displayName),
		slog.String("embedding_model", embeddingModel),
	)

	req := &aiplatformpb.CreateRagCorpusRequest{
		Parent: s.Parent(),
		RagCorpus: &aiplatformpb.RagCorpus{
			DisplayName:       displayName,
			Description:       description,
			RagVectorDbConfig: vectorDbConfigPb(embeddingModel),
		},
	}

	op, err := s.ragDataClient.CreateRagCorpus(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create RAG corpus: %w", err)
	}
	pbCorpus, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for RAG corpus creation: %w", err)
	}

	corpus := corpusFromPb(pbCorpus)
	s.logger.InfoContext(ctx, "RAG corpus created",
		slog.String("name", corpus.Name),
	)
	return corpus, nil
}

// UpdateCorpus updates the display name and/or description of a corpus.
// Empty fields are left untouched.
func (s *Service) UpdateCorpus(ctx context.Context, corpusName, displayName, description string) (*Corpus, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.UpdateCorpus")
	defer span.End()

	corpusName = s.CorpusName(corpusName)
	if err := ValidateCorpusName(corpusName); err != nil {
		return nil, err
	}

	var paths []string
	pbCorpus := &aiplatformpb.RagCorpus{Name: corpusName}
	if displayName != "" {
		pbCorpus.DisplayName = displayName
		paths = append(paths, "display_name")
	}
	if description != "" {
		pbCorpus.Description = description
		paths = append(paths, "description")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("nothing to update: provide a display name or description")
	}

	req := &aiplatformpb.UpdateRagCorpusRequest{
		RagCorpus: pbCorpus,
	}

	op, err := s.ragDataClient.UpdateRagCorpus(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update RAG corpus: %w", err)
	}
	updated, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for RAG corpus update: %w", err)
	}

	corpus := corpusFromPb(updated)
	s.logger.InfoContext(ctx, "RAG corpus updated",
		slog.String("name", corpus.Name),
	)
	return corpus, nil
}

// ListCorpora lists corpora in the project and location.
func (s *Service) ListCorpora(ctx context.Context, pageSize int32, pageToken string) (*CorpusPage, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.ListCorpora")
	defer span.End()

	req := &aiplatformpb.ListRagCorporaRequest{
		Parent:    s.Parent(),
		PageSize:  pageSize,
		PageToken: pageToken,
	}

	it := s.ragDataClient.ListRagCorpora(ctx, req)
	var corpora []*Corpus
	for {
		pbCorpus, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list RAG corpora: %w", err)
		}
		corpora = append(corpora, corpusFromPb(pbCorpus))
	}

	var nextPageToken string
	if resp, ok := it.Response.(*aiplatformpb.ListRagCorporaResponse); ok && resp != nil {
		nextPageToken = resp.GetNextPageToken()
	}

	s.logger.InfoContext(ctx, "Listed RAG corpora",
		slog.Int("count", len(corpora)),
	)
	return &CorpusPage{Corpora: corpora, NextPageToken: nextPageToken}, nil
}

// GetCorpus retrieves one corpus by id or resource name.
func (s *Service) GetCorpus(ctx context.Context, corpusName string) (*Corpus, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.GetCorpus")
	defer span.End()

	corpusName = s.CorpusName(corpusName)
	if err := ValidateCorpusName(corpusName); err != nil {
		return nil, err
	}

	pbCorpus, err := s.ragDataClient.GetRagCorpus(ctx, &aiplatformpb.GetRagCorpusRequest{Name: corpusName})
	if err != nil {
		return nil, fmt.Errorf("failed to get RAG corpus %s: %w", corpusName, err)
	}
	return corpusFromPb(pbCorpus), nil
}

// DeleteCorpus deletes a corpus. With force, contained files go with it.
func (s *Service) DeleteCorpus(ctx context.Context, corpusName string, force bool) error {
	ctx, span := s.tracer.Start(ctx, "ragengine.DeleteCorpus")
	defer span.End()

	corpusName = s.CorpusName(corpusName)
	if err := ValidateCorpusName(corpusName); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Deleting RAG corpus",
		slog.String("name", corpusName),
		slog.Bool("force", force),
	)

	op, err := s.ragDataClient.DeleteRagCorpus(ctx, &aiplatformpb.DeleteRagCorpusRequest{
		Name:  corpusName,
		Force: force,
	})
	if err != nil {
		return fmt.Errorf("failed to delete RAG corpus %s: %w", corpusName, err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for RAG corpus deletion: %w", err)
	}
	return nil
}

// vectorDbConfigPb builds the managed-database backend config with the
// given embedding model.
func vectorDbConfigPb(embeddingModel string) *aiplatformpb.RagVectorDbConfig {
	cfg := &aiplatformpb.RagVectorDbConfig{
		VectorDb: &aiplatformpb.RagVectorDbConfig_RagManagedDb_{
			RagManagedDb: &aiplatformpb.RagVectorDbConfig_RagManagedDb{},
		},
	}
	if embeddingModel != "" {
		cfg.RagEmbeddingModelConfig = &aiplatformpb.RagEmbeddingModelConfig{
			ModelConfig: &aiplatformpb.RagEmbeddingModelConfig_VertexPredictionEndpoint_{
				VertexPredictionEndpoint: &aiplatformpb.RagEmbeddingModelConfig_VertexPredictionEndpoint{
					Endpoint: PublisherModel(embeddingModel),
				},
			},
		}
	}
	return cfg
}

// corpusFromPb converts a protobuf RagCorpus to the package type.
func corpusFromPb(pb *aiplatformpb.RagCorpus) *Corpus {
	if pb == nil {
		return nil
	}

	corpus := &Corpus{
		Name:        pb.GetName(),
		DisplayName: pb.GetDisplayName(),
		Description: pb.GetDescription(),
	}

	if pb.GetCreateTime() != nil {
		t := pb.GetCreateTime().AsTime()
		corpus.CreateTime = &t
	}
	if pb.GetUpdateTime() != nil {
		t := pb.GetUpdateTime().AsTime()
		corpus.UpdateTime = &t
	}

	switch pb.GetCorpusStatus().GetState() {
	case aiplatformpb.CorpusStatus_INITIALIZED:
		corpus.State = CorpusStateActive
	case aiplatformpb.CorpusStatus_ERROR:
		corpus.State = CorpusStateError
	default:
		corpus.State = CorpusStateUnspecified
	}

	if vdb := pb.GetRagVectorDbConfig(); vdb != nil {
		corpus.EmbeddingModel = vdb.GetRagEmbeddingModelConfig().GetVertexPredictionEndpoint().GetEndpoint()
		if vvs, ok := vdb.GetVectorDb().(*aiplatformpb.RagVectorDbConfig_VertexVectorSearch_); ok {
			corpus.VectorSearchIndex = vvs.VertexVectorSearch.GetIndex()
		}
	}

	return corpus
}
