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

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"buckets", "corpora", "engines", "search"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == cmd {
			t.Errorf("subcommand %s not registered: %v", name, err)
		}
	}
}

func TestDeleteRequiresYes(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"corpora", "delete", "111"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("delete without --yes succeeded, want error")
	}
	if !strings.Contains(err.Error(), "--yes") {
		t.Errorf("error = %q, want mention of --yes", err)
	}
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	if err := printJSON(&out, map[string]int{"count": 2}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	if !strings.Contains(out.String(), `"count": 2`) {
		t.Errorf("output = %q", out.String())
	}
}
