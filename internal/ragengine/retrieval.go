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
)

// RetrieveContexts runs one semantic retrieval across the given corpora.
// The service embeds the query and returns the closest chunks; no ranking
// happens locally.
func (s *Service) RetrieveContexts(ctx context.Context, corpusNames []string, query string, topK int32, distanceThreshold float64) ([]*Context, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.RetrieveContexts")
	defer span.End()

	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if len(corpusNames) == 0 {
		return nil, fmt.Errorf("at least one corpus is required")
	}

	var resources []*aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource
	for _, name := range corpusNames {
		name = s.CorpusName(name)
		if err := ValidateCorpusName(name); err != nil {
			return nil, err
		}
		resources = append(resources, &aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource{
			RagCorpus: name,
		})
	}

	s.logger.InfoContext(ctx, "Retrieving contexts",
		slog.String("query", query),
		slog.Int("corpora", len(resources)),
		slog.Int("top_k", int(topK)),
		slog.Float64("distance_threshold", distanceThreshold),
	)

	req := &aiplatformpb.RetrieveContextsRequest{
		Parent: s.Parent(),
		Query: &aiplatformpb.RagQuery{
			Query:          &aiplatformpb.RagQuery_Text{Text: query},
			SimilarityTopK: topK,
		},
		DataSource: &aiplatformpb.RetrieveContextsRequest_VertexRagStore_{
			VertexRagStore: &aiplatformpb.RetrieveContextsRequest_VertexRagStore{
				RagResources:            resources,
				VectorDistanceThreshold: &distanceThreshold,
			},
		},
	}

	resp, err := s.ragClient.RetrieveContexts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve contexts: %w", err)
	}

	contexts := contextsFromPb(resp)
	s.logger.InfoContext(ctx, "Contexts retrieved",
		slog.Int("count", len(contexts)),
	)
	return contexts, nil
}

// QueryCorpus retrieves contexts from a single corpus.
func (s *Service) QueryCorpus(ctx context.Context, corpusName, query string, topK int32, distanceThreshold float64) ([]*Context, error) {
	return s.RetrieveContexts(ctx, []string{corpusName}, query, topK, distanceThreshold)
}

// contextsFromPb flattens a RetrieveContexts response.
func contextsFromPb(resp *aiplatformpb.RetrieveContextsResponse) []*Context {
	var contexts []*Context
	for _, c := range resp.GetContexts().GetContexts() {
		contexts = append(contexts, &Context{
			Text:              c.GetText(),
			SourceURI:         c.GetSourceUri(),
			SourceDisplayName: c.GetSourceDisplayName(),
			Distance:          c.GetDistance(),
		})
	}
	return contexts
}
