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
	"fmt"
	"regexp"
	"strings"
)

// CompiledQuery is the result of turning a natural-language question into
// search parameters: the cleaned query text, an optional filter
// expression, and the constraints that were recognized (surfaced back to
// the user by the agent).
type CompiledQuery struct {
	QueryText string            `json:"query_text"`
	Filter    string            `json:"filter,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	DateFrom  string            `json:"date_from,omitempty"`
	DateTo    string            `json:"date_to,omitempty"`
}

var (
	// field:value or field:"quoted value" constraints.
	fieldConstraintRe = regexp.MustCompile(`(?i)\b(company|owner|author|category|source)\s*:\s*("([^"]+)"|(\S+))`)
	// ISO date ranges: 2024-01-01..2024-03-31 (also ~ as separator).
	dateRangeRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\s*(?:\.\.|~)\s*(\d{4}-\d{2}-\d{2})\b`)
	// A single ISO date.
	dateRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
)

// CompileQuery extracts filterable constraints from a user question and
// returns the remaining text plus a Vertex AI Search filter expression.
// Years and free keywords stay in the query text; only explicit
// field:value pairs and ISO date ranges become filters.
func CompileQuery(userQuery string) *CompiledQuery {
	c := &CompiledQuery{QueryText: strings.TrimSpace(userQuery)}
	if c.QueryText == "" {
		return c
	}

	text := c.QueryText
	var clauses []string

	if m := dateRangeRe.FindStringSubmatch(text); m != nil {
		c.DateFrom, c.DateTo = m[1], m[2]
		clauses = append(clauses,
			fmt.Sprintf("date >= %q", c.DateFrom),
			fmt.Sprintf("date <= %q", c.DateTo),
		)
		text = strings.Replace(text, m[0], "", 1)
	} else if m := dateRe.FindString(text); m != "" {
		c.DateFrom, c.DateTo = m, m
		clauses = append(clauses, fmt.Sprintf("date = %q", m))
		text = strings.Replace(text, m, "", 1)
	}

	for _, m := range fieldConstraintRe.FindAllStringSubmatch(text, -1) {
		field := strings.ToLower(m[1])
		value := m[3]
		if value == "" {
			value = m[4]
		}
		if c.Fields == nil {
			c.Fields = make(map[string]string)
		}
		c.Fields[field] = value
		clauses = append(clauses, fmt.Sprintf("%s: ANY(%q)", field, value))
		text = strings.Replace(text, m[0], "", 1)
	}

	c.QueryText = strings.Join(strings.Fields(text), " ")
	if c.QueryText == "" {
		// Everything was a constraint; search still needs query text.
		c.QueryText = strings.TrimSpace(userQuery)
	}
	c.Filter = strings.Join(clauses, " AND ")
	return c
}

// SelectEngine picks the engine whose display name and id share the most
// tokens with the user query. With no overlap anywhere, the first engine
// wins; an empty engine list selects nothing.
func SelectEngine(engines []*Engine, userQuery string) *Engine {
	if len(engines) == 0 {
		return nil
	}

	queryTokens := tokenize(userQuery)
	best := engines[0]
	bestScore := 0
	for _, eng := range engines {
		score := 0
		engTokens := tokenize(eng.DisplayName + " " + eng.ID)
		for tok := range queryTokens {
			if engTokens[tok] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = eng, score
		}
	}
	return best
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/' || r == ',' || r == '.' || r == '?'
	}) {
		if len(tok) > 1 {
			tokens[tok] = true
		}
	}
	return tokens
}
