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

// Package searchtools exposes Vertex AI Search operations as agent
// function tools: listing engines, running a search with summarization,
// and compiling a natural-language question into an engine choice plus
// filter expression.
package searchtools

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/searchengine"
)

// SearchService is the subset of the Discovery Engine service the tools
// call.
type SearchService interface {
	ListEngines(ctx context.Context, pageSize int32, pageToken string) (*searchengine.EnginePage, error)
	Search(ctx context.Context, p *searchengine.SearchParams) (*searchengine.SearchResult, error)
}

// Toolset binds the search tools to a service and the shared defaults.
type Toolset struct {
	cfg    *config.Config
	svc    SearchService
	logger *slog.Logger
}

// New creates the search toolset.
func New(cfg *config.Config, svc SearchService, logger *slog.Logger) *Toolset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolset{cfg: cfg, svc: svc, logger: logger}
}

// Tools returns the function tools for the agent.
func (ts *Toolset) Tools() ([]tool.Tool, error) {
	specs := []struct {
		name        string
		description string
		build       func(functiontool.Config) (tool.Tool, error)
	}{
		{
			name:        "list_search_engines",
			description: "List the Vertex AI Search engines (apps) available in the project.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in ListEnginesInput) (ListEnginesOutput, error) {
					return ts.listEngines(ctx, in)
				})
			},
		},
		{
			name:        "vertex_search",
			description: "Search a Vertex AI Search engine and return a generated summary with cited results.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in SearchInput) (SearchOutput, error) {
					return ts.search(ctx, in)
				})
			},
		},
		{
			name:        "select_and_compile",
			description: "Pick the best search engine for a question and compile the question into query text and a filter expression. Use before vertex_search when the engine is not known.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in CompileInput) (CompileOutput, error) {
					return ts.selectAndCompile(ctx, in)
				})
			},
		},
	}

	tools := make([]tool.Tool, 0, len(specs))
	for _, spec := range specs {
		t, err := spec.build(functiontool.Config{Name: spec.name, Description: spec.description})
		if err != nil {
			return nil, fmt.Errorf("failed to create tool %s: %w", spec.name, err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// ListEnginesInput are the arguments for list_search_engines.
type ListEnginesInput struct {
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

// ListEnginesOutput is one page of engines.
type ListEnginesOutput struct {
	Engines       []*searchengine.Engine `json:"engines"`
	Count         int                    `json:"count"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
}

func (ts *Toolset) listEngines(ctx context.Context, in ListEnginesInput) (ListEnginesOutput, error) {
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = ts.cfg.Search.PageSize
	}
	page, err := ts.svc.ListEngines(ctx, int32(pageSize), in.PageToken)
	if err != nil {
		return ListEnginesOutput{}, err
	}
	return ListEnginesOutput{
		Engines:       page.Engines,
		Count:         len(page.Engines),
		NextPageToken: page.NextPageToken,
	}, nil
}

// SearchInput are the arguments for vertex_search.
type SearchInput struct {
	EngineID string `json:"engine_id"`
	Query    string `json:"query"`
	Filter   string `json:"filter,omitempty"`
	PageSize int    `json:"page_size,omitempty"`
}

// SearchOutput is the summarized search response.
type SearchOutput struct {
	Summary   string                   `json:"summary,omitempty"`
	Citations []*searchengine.Citation `json:"citations,omitempty"`
	Results   []*searchengine.Result   `json:"results"`
	Count     int                      `json:"count"`
}

func (ts *Toolset) search(ctx context.Context, in SearchInput) (SearchOutput, error) {
	if in.EngineID == "" {
		return SearchOutput{}, fmt.Errorf("engine_id must not be empty; call list_search_engines or select_and_compile first")
	}
	if in.Query == "" {
		return SearchOutput{}, fmt.Errorf("query must not be empty")
	}

	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = ts.cfg.Search.PageSize
	}

	sc := ts.cfg.Search
	result, err := ts.svc.Search(ctx, &searchengine.SearchParams{
		EngineID:        in.EngineID,
		Query:           in.Query,
		ServingConfigID: sc.ServingConfigID,
		PageSize:        int32(pageSize),
		Filter:          in.Filter,

		SummaryResultCount:  int32(sc.SummaryResultCount),
		IncludeCitations:    sc.IncludeCitations,
		UseSemanticChunks:   sc.UseSemanticChunks,
		SummaryModelVersion: sc.SummaryModelVersion,
		SummaryPreamble:     sc.SummaryPreamble,

		MaxSnippetCount:           int32(sc.MaxSnippetCount),
		MaxExtractiveAnswerCount:  int32(sc.MaxExtractiveAnswerCount),
		MaxExtractiveSegmentCount: int32(sc.MaxExtractiveSegmentCount),

		QueryExpansion:  sc.QueryExpansion,
		SpellCorrection: sc.SpellCorrection,
	})
	if err != nil {
		return SearchOutput{}, err
	}

	ts.logger.InfoContext(ctx, "search completed",
		slog.String("engine_id", in.EngineID),
		slog.Int("results", len(result.Results)),
	)
	return SearchOutput{
		Summary:   result.SummaryText,
		Citations: result.Citations,
		Results:   result.Results,
		Count:     len(result.Results),
	}, nil
}

// CompileInput are the arguments for select_and_compile.
type CompileInput struct {
	Question string `json:"question"`
	// EngineID pins the engine and skips selection.
	EngineID string `json:"engine_id,omitempty"`
}

// CompileOutput is the compiled search plan.
type CompileOutput struct {
	EngineID          string            `json:"engine_id"`
	EngineDisplayName string            `json:"engine_display_name,omitempty"`
	QueryText         string            `json:"query_text"`
	Filter            string            `json:"filter,omitempty"`
	Fields            map[string]string `json:"fields,omitempty"`
	DateFrom          string            `json:"date_from,omitempty"`
	DateTo            string            `json:"date_to,omitempty"`
}

// selectAndCompile compiles the question locally and picks an engine from
// the live engine list by name overlap.
func (ts *Toolset) selectAndCompile(ctx context.Context, in CompileInput) (CompileOutput, error) {
	if in.Question == "" {
		return CompileOutput{}, fmt.Errorf("question must not be empty")
	}

	compiled := searchengine.CompileQuery(in.Question)
	out := CompileOutput{
		EngineID:  in.EngineID,
		QueryText: compiled.QueryText,
		Filter:    compiled.Filter,
		Fields:    compiled.Fields,
		DateFrom:  compiled.DateFrom,
		DateTo:    compiled.DateTo,
	}
	if out.EngineID != "" {
		return out, nil
	}

	page, err := ts.svc.ListEngines(ctx, int32(ts.cfg.Search.PageSize), "")
	if err != nil {
		return CompileOutput{}, err
	}
	engine := searchengine.SelectEngine(page.Engines, in.Question)
	if engine == nil {
		return CompileOutput{}, fmt.Errorf("no search engines exist in the project")
	}
	out.EngineID = engine.ID
	out.EngineDisplayName = engine.DisplayName
	return out, nil
}
