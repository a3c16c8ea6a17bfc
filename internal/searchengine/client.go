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

// Package searchengine is a thin client for Vertex AI Search (Discovery
// Engine): engine discovery and search with snippets, extractive content,
// and summaries. Query understanding and ranking stay in the managed
// service.
package searchengine

import (
	"context"
	"fmt"
	"log/slog"

	discoveryengine "cloud.google.com/go/discoveryengine/apiv1"
	"cloud.google.com/go/auth/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// Service bundles the Discovery Engine clients for one project and app
// location.
type Service struct {
	searchClient *discoveryengine.SearchClient
	engineClient *discoveryengine.EngineClient
	projectID    string
	location     string
	logger       *slog.Logger
	tracer       trace.Tracer
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets the logger for the Service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service using application default credentials.
// Non-global locations are routed to their regional endpoint.
func NewService(ctx context.Context, projectID, location string, opts ...Option) (*Service, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project id must not be empty")
	}
	if location == "" {
		location = "global"
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect default credentials: %w", err)
	}

	clientOpts := []option.ClientOption{option.WithAuthCredentials(creds)}
	if ep := Endpoint(location); ep != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(ep))
	}

	searchClient, err := discoveryengine.NewSearchClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	engineClient, err := discoveryengine.NewEngineClient(ctx, clientOpts...)
	if err != nil {
		searchClient.Close()
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}

	s := &Service{
		searchClient: searchClient,
		engineClient: engineClient,
		projectID:    projectID,
		location:     location,
		logger:       slog.Default(),
		tracer:       otel.Tracer("corpusagent/searchengine"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.InfoContext(ctx, "Vertex AI Search client initialized",
		slog.String("project_id", projectID),
		slog.String("location", location),
	)
	return s, nil
}

// Close releases the underlying clients.
func (s *Service) Close() error {
	var firstErr error
	if err := s.searchClient.Close(); err != nil {
		firstErr = err
	}
	if err := s.engineClient.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Collection returns the default collection resource name.
func (s *Service) Collection() string {
	return fmt.Sprintf("projects/%s/locations/%s/collections/default_collection", s.projectID, s.location)
}

// ServingConfig returns the serving config resource name for an engine.
func (s *Service) ServingConfig(engineID, servingConfigID string) string {
	return fmt.Sprintf("%s/engines/%s/servingConfigs/%s", s.Collection(), engineID, servingConfigID)
}

// Endpoint returns the regional Discovery Engine endpoint, or "" for the
// global location (which uses the default endpoint).
func Endpoint(location string) string {
	if location == "" || location == "global" {
		return ""
	}
	return fmt.Sprintf("%s-discoveryengine.googleapis.com:443", location)
}
