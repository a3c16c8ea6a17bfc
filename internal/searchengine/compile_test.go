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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompileQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  *CompiledQuery
	}{
		{
			name:  "plain text passes through",
			query: "quarterly revenue growth",
			want: &CompiledQuery{
				QueryText: "quarterly revenue growth",
			},
		},
		{
			name:  "field constraint becomes filter",
			query: `earnings company:acme`,
			want: &CompiledQuery{
				QueryText: "earnings",
				Filter:    `company: ANY("acme")`,
				Fields:    map[string]string{"company": "acme"},
			},
		},
		{
			name:  "quoted field value",
			query: `risk factors owner:"Jordan Lee"`,
			want: &CompiledQuery{
				QueryText: "risk factors",
				Filter:    `owner: ANY("Jordan Lee")`,
				Fields:    map[string]string{"owner": "Jordan Lee"},
			},
		},
		{
			name:  "date range",
			query: "filings 2024-01-01..2024-03-31",
			want: &CompiledQuery{
				QueryText: "filings",
				Filter:    `date >= "2024-01-01" AND date <= "2024-03-31"`,
				DateFrom:  "2024-01-01",
				DateTo:    "2024-03-31",
			},
		},
		{
			name:  "single date",
			query: "board minutes 2023-06-15",
			want: &CompiledQuery{
				QueryText: "board minutes",
				Filter:    `date = "2023-06-15"`,
				DateFrom:  "2023-06-15",
				DateTo:    "2023-06-15",
			},
		},
		{
			name:  "date range and field combine with AND",
			query: "audit report company:globex 2022-01-01~2022-12-31",
			want: &CompiledQuery{
				QueryText: "audit report",
				Filter:    `date >= "2022-01-01" AND date <= "2022-12-31" AND company: ANY("globex")`,
				Fields:    map[string]string{"company": "globex"},
				DateFrom:  "2022-01-01",
				DateTo:    "2022-12-31",
			},
		},
		{
			name:  "bare year stays in query text",
			query: "2024 outlook",
			want: &CompiledQuery{
				QueryText: "2024 outlook",
			},
		},
		{
			name:  "constraints only keeps original as query text",
			query: "company:acme",
			want: &CompiledQuery{
				QueryText: "company:acme",
				Filter:    `company: ANY("acme")`,
				Fields:    map[string]string{"company": "acme"},
			},
		},
		{
			name:  "empty",
			query: "   ",
			want:  &CompiledQuery{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CompileQuery(tc.query)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("CompileQuery(%q) mismatch (-want +got):\n%s", tc.query, diff)
			}
		})
	}
}

func TestSelectEngine(t *testing.T) {
	engines := []*Engine{
		{ID: "contracts-search", DisplayName: "Contracts Search"},
		{ID: "hr-policies", DisplayName: "HR Policy Library"},
		{ID: "finance-docs", DisplayName: "Finance Documents"},
	}

	tests := []struct {
		name   string
		query  string
		wantID string
	}{
		{"display name overlap", "find the HR policy on remote work", "hr-policies"},
		{"id token overlap", "search finance docs for invoices", "finance-docs"},
		{"case insensitive", "CONTRACTS with vendor X", "contracts-search"},
		{"no overlap falls back to first", "unrelated question", "contracts-search"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectEngine(engines, tc.query)
			if got == nil {
				t.Fatalf("SelectEngine(%q) = nil", tc.query)
			}
			if got.ID != tc.wantID {
				t.Errorf("SelectEngine(%q) = %q, want %q", tc.query, got.ID, tc.wantID)
			}
		})
	}
}

func TestSelectEngine_Empty(t *testing.T) {
	if got := SelectEngine(nil, "anything"); got != nil {
		t.Errorf("SelectEngine(nil, ...) = %v, want nil", got)
	}
}
