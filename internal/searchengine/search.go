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
	"google.golang.org/protobuf/types/known/structpb"
)

// SearchParams are the fully-defaulted parameters for one search call.
// Callers (the tool layer) fill omitted values from configuration before
// calling Search.
type SearchParams struct {
	EngineID        string
	Query           string
	ServingConfigID string
	PageSize        int32
	Filter          string

	SummaryResultCount  int32
	IncludeCitations    bool
	UseSemanticChunks   bool
	SummaryModelVersion string
	SummaryPreamble     string

	MaxSnippetCount           int32
	MaxExtractiveAnswerCount  int32
	MaxExtractiveSegmentCount int32

	// QueryExpansion and SpellCorrection are "AUTO" or "DISABLED".
	QueryExpansion  string
	SpellCorrection string
}

// Result is one search hit with its best-effort source and evidence.
type Result struct {
	ID                 string   `json:"id,omitempty"`
	Title              string   `json:"title,omitempty"`
	URI                string   `json:"uri,omitempty"`
	Link               string   `json:"link,omitempty"`
	Snippets           []string `json:"snippets,omitempty"`
	ExtractiveAnswers  []string `json:"extractive_answers,omitempty"`
	ExtractiveSegments []string `json:"extractive_segments,omitempty"`
}

// Citation is one entry of the sources list derived from results.
type Citation struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
	Link  string `json:"link,omitempty"`
}

// SearchResult is the parsed response of one search call.
type SearchResult struct {
	EngineID      string      `json:"engine_id"`
	ServingConfig string      `json:"serving_config"`
	Query         string      `json:"query"`
	SummaryText   string      `json:"summary_text,omitempty"`
	Citations     []*Citation `json:"citations,omitempty"`
	Results       []*Result   `json:"results"`
}

// Search runs one search against an engine, requesting snippets,
// extractive content, and a summary in a single call.
func (s *Service) Search(ctx context.Context, p *SearchParams) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "searchengine.Search")
	defer span.End()

	if p.EngineID == "" {
		return nil, fmt.Errorf("engine id must not be empty")
	}
	if p.Query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	servingConfig := s.ServingConfig(p.EngineID, p.ServingConfigID)

	s.logger.InfoContext(ctx, "Searching",
		slog.String("engine_id", p.EngineID),
		slog.String("query", p.Query),
		slog.String("filter", p.Filter),
		slog.Int("page_size", int(p.PageSize)),
	)

	req := &discoveryenginepb.SearchRequest{
		ServingConfig:     servingConfig,
		Query:             p.Query,
		PageSize:          p.PageSize,
		Filter:            p.Filter,
		ContentSearchSpec: contentSearchSpecPb(p),
		QueryExpansionSpec: &discoveryenginepb.SearchRequest_QueryExpansionSpec{
			Condition: queryExpansionCondition(p.QueryExpansion),
		},
		SpellCorrectionSpec: &discoveryenginepb.SearchRequest_SpellCorrectionSpec{
			Mode: spellCorrectionMode(p.SpellCorrection),
		},
	}

	it := s.searchClient.Search(ctx, req)
	var results []*Result
	for {
		// One page only; the iterator would otherwise keep fetching.
		if p.PageSize > 0 && len(results) >= int(p.PageSize) {
			break
		}
		pbResult, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("search against engine %s failed: %w", p.EngineID, err)
		}
		results = append(results, resultFromPb(pbResult))
	}

	out := &SearchResult{
		EngineID:      p.EngineID,
		ServingConfig: servingConfig,
		Query:         p.Query,
		Results:       results,
		Citations:     citationsFromResults(results),
	}
	if resp, ok := it.Response.(*discoveryenginepb.SearchResponse); ok && resp != nil {
		out.SummaryText = resp.GetSummary().GetSummaryText()
	}

	s.logger.InfoContext(ctx, "Search finished",
		slog.Int("results", len(results)),
		slog.Bool("has_summary", out.SummaryText != ""),
	)
	return out, nil
}

func contentSearchSpecPb(p *SearchParams) *discoveryenginepb.SearchRequest_ContentSearchSpec {
	return &discoveryenginepb.SearchRequest_ContentSearchSpec{
		SnippetSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SnippetSpec{
			ReturnSnippet:   true,
			MaxSnippetCount: p.MaxSnippetCount,
		},
		ExtractiveContentSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_ExtractiveContentSpec{
			MaxExtractiveAnswerCount:     p.MaxExtractiveAnswerCount,
			MaxExtractiveSegmentCount:    p.MaxExtractiveSegmentCount,
			ReturnExtractiveSegmentScore: true,
		},
		SummarySpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SummarySpec{
			SummaryResultCount:     p.SummaryResultCount,
			IncludeCitations:       p.IncludeCitations,
			IgnoreAdversarialQuery: true,
			UseSemanticChunks:      p.UseSemanticChunks,
			ModelSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SummarySpec_ModelSpec{
				Version: p.SummaryModelVersion,
			},
			ModelPromptSpec: &discoveryenginepb.SearchRequest_ContentSearchSpec_SummarySpec_ModelPromptSpec{
				Preamble: p.SummaryPreamble,
			},
		},
	}
}

func queryExpansionCondition(v string) discoveryenginepb.SearchRequest_QueryExpansionSpec_Condition {
	if strings.EqualFold(v, "DISABLED") {
		return discoveryenginepb.SearchRequest_QueryExpansionSpec_DISABLED
	}
	return discoveryenginepb.SearchRequest_QueryExpansionSpec_AUTO
}

func spellCorrectionMode(v string) discoveryenginepb.SearchRequest_SpellCorrectionSpec_Mode {
	if strings.EqualFold(v, "DISABLED") {
		return discoveryenginepb.SearchRequest_SpellCorrectionSpec_SUGGESTION_ONLY
	}
	return discoveryenginepb.SearchRequest_SpellCorrectionSpec_AUTO
}

// resultFromPb extracts source and evidence from one search result. The
// document schema varies between structured and unstructured stores, so
// every lookup is best-effort across the common field names.
func resultFromPb(pb *discoveryenginepb.SearchResponse_SearchResult) *Result {
	doc := pb.GetDocument()
	derived := doc.GetDerivedStructData()
	structured := doc.GetStructData()

	r := &Result{ID: pb.GetId()}

	r.Title = firstStructString(
		fieldString(structured, "title"),
		fieldString(derived, "title"),
		doc.GetId(),
		doc.GetName(),
	)
	r.URI = firstStructString(
		fieldString(derived, "link"),
		fieldString(structured, "link"),
		fieldString(structured, "uri"),
	)
	if strings.HasPrefix(r.URI, "http://") || strings.HasPrefix(r.URI, "https://") {
		r.Link = r.URI
	}

	r.Snippets = dedup(structTexts(derived, "snippets", "snippet"))
	r.ExtractiveAnswers = structTexts(derived, "extractive_answers", "content")
	r.ExtractiveSegments = structTexts(derived, "extractive_segments", "content")
	return r
}

// citationsFromResults builds a numbered, deduplicated sources list.
func citationsFromResults(results []*Result) []*Citation {
	var citations []*Citation
	seen := make(map[string]bool)
	for _, r := range results {
		key := firstStructString(r.URI, r.Link, r.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, &Citation{
			Index: len(citations) + 1,
			Title: r.Title,
			URI:   r.URI,
			Link:  r.Link,
		})
	}
	return citations
}

// fieldString reads a top-level string field from a struct.
func fieldString(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// structTexts reads listKey from s and collects textKey from each entry.
// Plain string entries are taken as-is.
func structTexts(s *structpb.Struct, listKey, textKey string) []string {
	if s == nil {
		return nil
	}
	list := s.GetFields()[listKey].GetListValue()
	if list == nil {
		return nil
	}
	var texts []string
	for _, v := range list.GetValues() {
		switch {
		case v.GetStructValue() != nil:
			if txt := fieldString(v.GetStructValue(), textKey); txt != "" {
				texts = append(texts, txt)
			}
		case v.GetStringValue() != "":
			texts = append(texts, v.GetStringValue())
		}
	}
	return texts
}

func firstStructString(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func dedup(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range in {
		key := strings.TrimSpace(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
