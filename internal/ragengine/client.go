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

// Package ragengine is a thin client for the Vertex AI RAG Engine:
// corpus management, document import, and semantic retrieval. All heavy
// lifting (chunking, embedding, indexing, vector search) happens in the
// managed service; this package only shapes requests and responses.
package ragengine

import (
	"context"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/auth/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// Service bundles the RAG Engine data-plane and retrieval clients for one
// project and location.
type Service struct {
	ragClient     *aiplatform.VertexRagClient
	ragDataClient *aiplatform.VertexRagDataClient
	projectID     string
	location      string
	logger        *slog.Logger
	tracer        trace.Tracer
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service using application default credentials. The
// regional API endpoint is derived from location.
func NewService(ctx context.Context, projectID, location string, opts ...Option) (*Service, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project id and location must not be empty")
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect default credentials: %w", err)
	}

	clientOpts := []option.ClientOption{
		option.WithAuthCredentials(creds),
		option.WithEndpoint(Endpoint(location)),
	}

	ragClient, err := aiplatform.NewVertexRagClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex RAG client: %w", err)
	}
	ragDataClient, err := aiplatform.NewVertexRagDataClient(ctx, clientOpts...)
	if err != nil {
		ragClient.Close()
		return nil, fmt.Errorf("failed to create Vertex RAG data client: %w", err)
	}

	s := &Service{
		ragClient:     ragClient,
		ragDataClient: ragDataClient,
		projectID:     projectID,
		location:      location,
		logger:        slog.Default(),
		tracer:        otel.Tracer("corpusagent/ragengine"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.InfoContext(ctx, "Vertex AI RAG Engine client initialized",
		slog.String("project_id", projectID),
		slog.String("location", location),
	)
	return s, nil
}

// Close releases the underlying clients.
func (s *Service) Close() error {
	var firstErr error
	if err := s.ragClient.Close(); err != nil {
		firstErr = err
	}
	if err := s.ragDataClient.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Parent returns the resource parent for corpora.
func (s *Service) Parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", s.projectID, s.location)
}

// CorpusName expands a corpus id into a full resource name. Fully
// qualified names pass through unchanged.
func (s *Service) CorpusName(corpus string) string {
	if ValidateCorpusName(corpus) == nil {
		return corpus
	}
	return fmt.Sprintf("%s/ragCorpora/%s", s.Parent(), corpus)
}

// Endpoint returns the regional Vertex AI API endpoint for a location.
func Endpoint(location string) string {
	return fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)
}
