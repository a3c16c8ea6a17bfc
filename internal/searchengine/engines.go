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

package searchengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/discoveryengine/apiv1/discoveryenginepb"
	"google.golang.org/api/iterator"
)

// Engine describes a Vertex AI Search app.
type Engine struct {
	// ID is the trailing engine id usable in search calls.
	ID string `json:"id"`
	// Name is the full resource name.
	Name             string `json:"name"`
	DisplayName      string `json:"display_name,omitempty"`
	IndustryVertical string `json:"industry_vertical,omitempty"`
	SolutionType     string `json:"solution_type,omitempty"`
}

// EnginePage is one page of an engine listing.
type EnginePage struct {
	Engines       []*Engine `json:"engines"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

// ListEngines lists the search apps under the default collection.
func (s *Service) ListEngines(ctx context.Context, pageSize int32, pageToken string) (*EnginePage, error) {
	ctx, span := s.tracer.Start(ctx, "searchengine.ListEngines")
	defer span.End()

	req := &discoveryenginepb.ListEnginesRequest{
		Parent:    s.Collection(),
		PageSize:  pageSize,
		PageToken: pageToken,
	}

	it := s.engineClient.ListEngines(ctx, req)
	var engines []*Engine
	for {
		pbEngine, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list search engines: %w", err)
		}
		engines = append(engines, engineFromPb(pbEngine))
	}

	var nextPageToken string
	if resp, ok := it.Response.(*discoveryenginepb.ListEnginesResponse); ok && resp != nil {
		nextPageToken = resp.GetNextPageToken()
	}

	s.logger.InfoContext(ctx, "Listed search engines",
		slog.Int("count", len(engines)),
	)
	return &EnginePage{Engines: engines, NextPageToken: nextPageToken}, nil
}

// engineFromPb converts a protobuf Engine to the package type.
func engineFromPb(pb *discoveryenginepb.Engine) *Engine {
	name := pb.GetName()
	id := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		id = name[i+1:]
	}
	return &Engine{
		ID:               id,
		Name:             name,
		DisplayName:      pb.GetDisplayName(),
		IndustryVertical: pb.GetIndustryVertical().String(),
		SolutionType:     pb.GetSolutionType().String(),
	}
}
