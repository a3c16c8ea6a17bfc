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

package searchtools

import (
	"context"
	"fmt"
	"testing"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/searchengine"
)

// stubSearch records the last search parameters and returns canned
// values.
type stubSearch struct {
	lastParams *searchengine.SearchParams
	engines    []*searchengine.Engine
	err        error
}

func (s *stubSearch) ListEngines(ctx context.Context, pageSize int32, pageToken string) (*searchengine.EnginePage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &searchengine.EnginePage{Engines: s.engines}, nil
}

func (s *stubSearch) Search(ctx context.Context, p *searchengine.SearchParams) (*searchengine.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastParams = p
	return &searchengine.SearchResult{
		EngineID:    p.EngineID,
		Query:       p.Query,
		SummaryText: "summary of findings",
		Citations:   []*searchengine.Citation{{Index: 1, Title: "A", URI: "https://example.com/a"}},
		Results:     []*searchengine.Result{{ID: "doc-1", Title: "A"}},
	}, nil
}

func newToolset(svc SearchService) *Toolset {
	cfg := config.Default()
	cfg.ProjectID = "test-project"
	return New(cfg, svc, nil)
}

func TestSearch_ConfigDefaultsApplied(t *testing.T) {
	stub := &stubSearch{}
	ts := newToolset(stub)

	out, err := ts.search(context.Background(), SearchInput{EngineID: "docs-engine", Query: "quarterly revenue"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	p := stub.lastParams
	if p.ServingConfigID != "default_config" {
		t.Errorf("serving config = %q", p.ServingConfigID)
	}
	if p.PageSize != 10 {
		t.Errorf("page size = %d, want configured default 10", p.PageSize)
	}
	if p.SummaryResultCount != 3 || !p.IncludeCitations || !p.UseSemanticChunks {
		t.Errorf("summary spec not filled from config: %+v", p)
	}
	if p.SummaryModelVersion != "stable" {
		t.Errorf("summary model version = %q", p.SummaryModelVersion)
	}
	if p.QueryExpansion != "AUTO" || p.SpellCorrection != "AUTO" {
		t.Errorf("expansion=%q spell=%q, want AUTO/AUTO", p.QueryExpansion, p.SpellCorrection)
	}
	if out.Summary != "summary of findings" || out.Count != 1 {
		t.Errorf("output = %+v", out)
	}
}

func TestSearch_Validation(t *testing.T) {
	ts := newToolset(&stubSearch{})
	ctx := context.Background()

	if _, err := ts.search(ctx, SearchInput{Query: "q"}); err == nil {
		t.Error("search without engine_id succeeded, want error")
	}
	if _, err := ts.search(ctx, SearchInput{EngineID: "e"}); err == nil {
		t.Error("search without query succeeded, want error")
	}
}

func TestListEngines(t *testing.T) {
	stub := &stubSearch{engines: []*searchengine.Engine{{ID: "docs-engine", DisplayName: "Docs"}}}
	ts := newToolset(stub)

	out, err := ts.listEngines(context.Background(), ListEnginesInput{})
	if err != nil {
		t.Fatalf("listEngines: %v", err)
	}
	if out.Count != 1 || out.Engines[0].ID != "docs-engine" {
		t.Errorf("output = %+v", out)
	}
}

func TestSelectAndCompile(t *testing.T) {
	stub := &stubSearch{engines: []*searchengine.Engine{
		{ID: "contracts-search", DisplayName: "Contracts Search"},
		{ID: "finance-docs", DisplayName: "Finance Documents"},
	}}
	ts := newToolset(stub)

	out, err := ts.selectAndCompile(context.Background(), CompileInput{
		Question: "finance documents company:acme 2024-01-01..2024-06-30",
	})
	if err != nil {
		t.Fatalf("selectAndCompile: %v", err)
	}
	if out.EngineID != "finance-docs" {
		t.Errorf("engine = %q, want finance-docs", out.EngineID)
	}
	if out.QueryText != "finance documents" {
		t.Errorf("query text = %q", out.QueryText)
	}
	if out.Filter != `date >= "2024-01-01" AND date <= "2024-06-30" AND company: ANY("acme")` {
		t.Errorf("filter = %q", out.Filter)
	}
	if out.DateFrom != "2024-01-01" || out.DateTo != "2024-06-30" {
		t.Errorf("dates = %q..%q", out.DateFrom, out.DateTo)
	}
}

func TestSelectAndCompile_PinnedEngine(t *testing.T) {
	stub := &stubSearch{err: fmt.Errorf("ListEngines should not be called")}
	ts := newToolset(stub)

	out, err := ts.selectAndCompile(context.Background(), CompileInput{
		Question: "anything",
		EngineID: "pinned",
	})
	if err != nil {
		t.Fatalf("selectAndCompile: %v", err)
	}
	if out.EngineID != "pinned" {
		t.Errorf("engine = %q, want pinned", out.EngineID)
	}
}

func TestSelectAndCompile_NoEngines(t *testing.T) {
	ts := newToolset(&stubSearch{})
	if _, err := ts.selectAndCompile(context.Background(), CompileInput{Question: "anything"}); err == nil {
		t.Fatal("selectAndCompile with no engines succeeded, want error")
	}
}

func TestTools_AllRegistered(t *testing.T) {
	ts := newToolset(&stubSearch{})
	tools, err := ts.Tools()
	if err != nil {
		t.Fatalf("Tools: %v", err)
	}
	if len(tools) != 3 {
		t.Fatalf("len(tools) = %d, want 3", len(tools))
	}
}
