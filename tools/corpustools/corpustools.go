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

// Package corpustools exposes Vertex AI RAG Engine operations as agent
// function tools: corpus lifecycle, document import from Cloud Storage,
// file management, and retrieval. Corpus arguments accept either a bare
// id or a full resource name; omitted tuning parameters fall back to the
// central config.
package corpustools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"github.com/ragops/corpusagent/internal/config"
	"github.com/ragops/corpusagent/internal/ragengine"
)

// RAGService is the subset of the RAG Engine service the tools call.
type RAGService interface {
	CreateCorpus(ctx context.Context, displayName, description, embeddingModel string) (*ragengine.Corpus, error)
	UpdateCorpus(ctx context.Context, corpusName, displayName, description string) (*ragengine.Corpus, error)
	ListCorpora(ctx context.Context, pageSize int32, pageToken string) (*ragengine.CorpusPage, error)
	GetCorpus(ctx context.Context, corpusName string) (*ragengine.Corpus, error)
	DeleteCorpus(ctx context.Context, corpusName string, force bool) error
	ImportFromGCS(ctx context.Context, corpusName string, gcsURIs []string, chunkSize, chunkOverlap int32) (*ragengine.ImportResult, error)
	ListFiles(ctx context.Context, corpusName string, pageSize int32, pageToken string) (*ragengine.FilePage, error)
	GetFile(ctx context.Context, fileName string) (*ragengine.File, error)
	DeleteFile(ctx context.Context, fileName string) error
	RetrieveContexts(ctx context.Context, corpusNames []string, query string, topK int32, distanceThreshold float64) ([]*ragengine.Context, error)
}

// Toolset binds the corpus tools to a service and the shared defaults.
type Toolset struct {
	cfg    *config.Config
	svc    RAGService
	logger *slog.Logger
}

// New creates the corpus toolset.
func New(cfg *config.Config, svc RAGService, logger *slog.Logger) *Toolset {
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
			name:        "create_corpus",
			description: "Create a Vertex AI RAG corpus. The embedding model falls back to the configured default when omitted.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in CreateCorpusInput) (CorpusOutput, error) {
					return ts.createCorpus(ctx, in)
				})
			},
		},
		{
			name:        "update_corpus",
			description: "Update the display name or description of an existing RAG corpus.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in UpdateCorpusInput) (CorpusOutput, error) {
					return ts.updateCorpus(ctx, in)
				})
			},
		},
		{
			name:        "list_corpora",
			description: "List the RAG corpora in the project.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in ListCorporaInput) (ListCorporaOutput, error) {
					return ts.listCorpora(ctx, in)
				})
			},
		},
		{
			name:        "get_corpus",
			description: "Get the details of one RAG corpus by id or full resource name.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in GetCorpusInput) (CorpusOutput, error) {
					return ts.getCorpus(ctx, in)
				})
			},
		},
		{
			name:        "delete_corpus",
			description: "Delete a RAG corpus and everything in it. This cannot be undone; confirm with the user first.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in DeleteCorpusInput) (DeleteOutput, error) {
					return ts.deleteCorpus(ctx, in)
				})
			},
		},
		{
			name:        "import_document",
			description: "Import documents from Cloud Storage (gs:// URIs) into a RAG corpus, with optional chunk size and overlap.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in ImportInput) (ImportOutput, error) {
					return ts.importDocuments(ctx, in)
				})
			},
		},
		{
			name:        "list_files",
			description: "List the files ingested into a RAG corpus.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in ListFilesInput) (ListFilesOutput, error) {
					return ts.listFiles(ctx, in)
				})
			},
		},
		{
			name:        "get_file",
			description: "Get the details of one file in a RAG corpus.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in GetFileInput) (FileOutput, error) {
					return ts.getFile(ctx, in)
				})
			},
		},
		{
			name:        "delete_file",
			description: "Delete one file from a RAG corpus. This cannot be undone; confirm with the user first.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in DeleteFileInput) (DeleteOutput, error) {
					return ts.deleteFile(ctx, in)
				})
			},
		},
		{
			name:        "query_rag_corpus",
			description: "Retrieve the most relevant chunks for a question from one RAG corpus.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in QueryInput) (QueryOutput, error) {
					return ts.queryCorpus(ctx, in)
				})
			},
		},
		{
			name:        "search_all_corpora",
			description: "Retrieve the most relevant chunks for a question across every RAG corpus in the project.",
			build: func(c functiontool.Config) (tool.Tool, error) {
				return functiontool.New(c, func(ctx tool.Context, in SearchAllInput) (QueryOutput, error) {
					return ts.searchAllCorpora(ctx, in)
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

// CreateCorpusInput are the arguments for create_corpus.
type CreateCorpusInput struct {
	DisplayName    string `json:"display_name"`
	Description    string `json:"description,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// CorpusOutput reports one corpus.
type CorpusOutput struct {
	Corpus  *ragengine.Corpus `json:"corpus"`
	Message string            `json:"message,omitempty"`
}

func (ts *Toolset) createCorpus(ctx context.Context, in CreateCorpusInput) (CorpusOutput, error) {
	if in.DisplayName == "" {
		return CorpusOutput{}, fmt.Errorf("display_name must not be empty")
	}
	embeddingModel := in.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = ts.cfg.RAG.EmbeddingModel
	}

	corpus, err := ts.svc.CreateCorpus(ctx, in.DisplayName, in.Description, embeddingModel)
	if err != nil {
		return CorpusOutput{}, err
	}
	return CorpusOutput{
		Corpus:  corpus,
		Message: fmt.Sprintf("Created corpus %q (%s).", corpus.DisplayName, corpus.Name),
	}, nil
}

// UpdateCorpusInput are the arguments for update_corpus. At least one of
// DisplayName and Description must be set.
type UpdateCorpusInput struct {
	CorpusName  string `json:"corpus_name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
}

func (ts *Toolset) updateCorpus(ctx context.Context, in UpdateCorpusInput) (CorpusOutput, error) {
	if in.CorpusName == "" {
		return CorpusOutput{}, fmt.Errorf("corpus_name must not be empty")
	}
	corpus, err := ts.svc.UpdateCorpus(ctx, ts.cfg.CorpusResourceName(in.CorpusName), in.DisplayName, in.Description)
	if err != nil {
		return CorpusOutput{}, err
	}
	return CorpusOutput{
		Corpus:  corpus,
		Message: fmt.Sprintf("Updated corpus %s.", corpus.Name),
	}, nil
}

// ListCorporaInput are the arguments for list_corpora.
type ListCorporaInput struct {
	PageSize  int    `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

// ListCorporaOutput is one page of corpora.
type ListCorporaOutput struct {
	Corpora       []*ragengine.Corpus `json:"corpora"`
	Count         int                 `json:"count"`
	NextPageToken string              `json:"next_page_token,omitempty"`
}

func (ts *Toolset) listCorpora(ctx context.Context, in ListCorporaInput) (ListCorporaOutput, error) {
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = ts.cfg.RAG.PageSize
	}
	page, err := ts.svc.ListCorpora(ctx, int32(pageSize), in.PageToken)
	if err != nil {
		return ListCorporaOutput{}, err
	}
	return ListCorporaOutput{
		Corpora:       page.Corpora,
		Count:         len(page.Corpora),
		NextPageToken: page.NextPageToken,
	}, nil
}

// GetCorpusInput are the arguments for get_corpus.
type GetCorpusInput struct {
	CorpusName string `json:"corpus_name"`
}

func (ts *Toolset) getCorpus(ctx context.Context, in GetCorpusInput) (CorpusOutput, error) {
	if in.CorpusName == "" {
		return CorpusOutput{}, fmt.Errorf("corpus_name must not be empty")
	}
	corpus, err := ts.svc.GetCorpus(ctx, ts.cfg.CorpusResourceName(in.CorpusName))
	if err != nil {
		return CorpusOutput{}, err
	}
	return CorpusOutput{Corpus: corpus}, nil
}

// DeleteCorpusInput are the arguments for delete_corpus. Confirm must be
// true; it is the model's acknowledgement that the user agreed.
type DeleteCorpusInput struct {
	CorpusName string `json:"corpus_name"`
	Confirm    bool   `json:"confirm"`
}

// DeleteOutput reports a completed deletion.
type DeleteOutput struct {
	Deleted string `json:"deleted"`
	Message string `json:"message"`
}

func (ts *Toolset) deleteCorpus(ctx context.Context, in DeleteCorpusInput) (DeleteOutput, error) {
	if in.CorpusName == "" {
		return DeleteOutput{}, fmt.Errorf("corpus_name must not be empty")
	}
	if !in.Confirm {
		return DeleteOutput{}, fmt.Errorf("deletion not confirmed: ask the user to confirm deleting corpus %q, then call again with confirm=true", in.CorpusName)
	}

	name := ts.cfg.CorpusResourceName(in.CorpusName)
	if err := ts.svc.DeleteCorpus(ctx, name, true); err != nil {
		return DeleteOutput{}, err
	}
	ts.logger.InfoContext(ctx, "corpus deleted", slog.String("corpus", name))
	return DeleteOutput{
		Deleted: name,
		Message: fmt.Sprintf("Deleted corpus %s and all of its files.", name),
	}, nil
}

// ImportInput are the arguments for import_document.
type ImportInput struct {
	CorpusName   string   `json:"corpus_name"`
	GCSUris      []string `json:"gcs_uris"`
	ChunkSize    int      `json:"chunk_size,omitempty"`
	ChunkOverlap int      `json:"chunk_overlap,omitempty"`
}

// ImportOutput reports the outcome of an import.
type ImportOutput struct {
	Result  *ragengine.ImportResult `json:"result"`
	Message string                  `json:"message"`
}

func (ts *Toolset) importDocuments(ctx context.Context, in ImportInput) (ImportOutput, error) {
	if in.CorpusName == "" {
		return ImportOutput{}, fmt.Errorf("corpus_name must not be empty")
	}
	if len(in.GCSUris) == 0 {
		return ImportOutput{}, fmt.Errorf("gcs_uris must not be empty")
	}
	for _, uri := range in.GCSUris {
		if !strings.HasPrefix(uri, "gs://") {
			return ImportOutput{}, fmt.Errorf("source %q is not a gs:// URI", uri)
		}
	}

	result, err := ts.svc.ImportFromGCS(ctx, ts.cfg.CorpusResourceName(in.CorpusName), in.GCSUris, int32(in.ChunkSize), int32(in.ChunkOverlap))
	if err != nil {
		return ImportOutput{}, err
	}
	msg := fmt.Sprintf("Imported %d document(s).", result.ImportedCount)
	if result.FailedCount > 0 {
		msg = fmt.Sprintf("Imported %d document(s), %d failed.", result.ImportedCount, result.FailedCount)
	}
	return ImportOutput{Result: result, Message: msg}, nil
}

// ListFilesInput are the arguments for list_files.
type ListFilesInput struct {
	CorpusName string `json:"corpus_name"`
	PageSize   int    `json:"page_size,omitempty"`
	PageToken  string `json:"page_token,omitempty"`
}

// ListFilesOutput is one page of corpus files.
type ListFilesOutput struct {
	Files         []*ragengine.File `json:"files"`
	Count         int               `json:"count"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

func (ts *Toolset) listFiles(ctx context.Context, in ListFilesInput) (ListFilesOutput, error) {
	if in.CorpusName == "" {
		return ListFilesOutput{}, fmt.Errorf("corpus_name must not be empty")
	}
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = ts.cfg.RAG.PageSize
	}
	page, err := ts.svc.ListFiles(ctx, ts.cfg.CorpusResourceName(in.CorpusName), int32(pageSize), in.PageToken)
	if err != nil {
		return ListFilesOutput{}, err
	}
	return ListFilesOutput{
		Files:         page.Files,
		Count:         len(page.Files),
		NextPageToken: page.NextPageToken,
	}, nil
}

// GetFileInput are the arguments for get_file. FileName may be a bare
// file id (with CorpusName set) or a full resource name.
type GetFileInput struct {
	CorpusName string `json:"corpus_name,omitempty"`
	FileName   string `json:"file_name"`
}

// FileOutput reports one corpus file.
type FileOutput struct {
	File *ragengine.File `json:"file"`
}

func (ts *Toolset) getFile(ctx context.Context, in GetFileInput) (FileOutput, error) {
	name, err := ts.fileResourceName(in.CorpusName, in.FileName)
	if err != nil {
		return FileOutput{}, err
	}
	file, err := ts.svc.GetFile(ctx, name)
	if err != nil {
		return FileOutput{}, err
	}
	return FileOutput{File: file}, nil
}

// DeleteFileInput are the arguments for delete_file.
type DeleteFileInput struct {
	CorpusName string `json:"corpus_name,omitempty"`
	FileName   string `json:"file_name"`
	Confirm    bool   `json:"confirm"`
}

func (ts *Toolset) deleteFile(ctx context.Context, in DeleteFileInput) (DeleteOutput, error) {
	name, err := ts.fileResourceName(in.CorpusName, in.FileName)
	if err != nil {
		return DeleteOutput{}, err
	}
	if !in.Confirm {
		return DeleteOutput{}, fmt.Errorf("deletion not confirmed: ask the user to confirm deleting file %q, then call again with confirm=true", in.FileName)
	}

	if err := ts.svc.DeleteFile(ctx, name); err != nil {
		return DeleteOutput{}, err
	}
	ts.logger.InfoContext(ctx, "file deleted", slog.String("file", name))
	return DeleteOutput{
		Deleted: name,
		Message: fmt.Sprintf("Deleted file %s.", name),
	}, nil
}

// fileResourceName expands corpus and file ids into a full rag file
// resource name.
func (ts *Toolset) fileResourceName(corpus, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("file_name must not be empty")
	}
	if strings.HasPrefix(file, "projects/") {
		return file, nil
	}
	if corpus == "" {
		return "", fmt.Errorf("corpus_name is required when file_name is not a full resource name")
	}
	return fmt.Sprintf("%s/ragFiles/%s", ts.cfg.CorpusResourceName(corpus), file), nil
}

// QueryInput are the arguments for query_rag_corpus.
type QueryInput struct {
	CorpusName        string  `json:"corpus_name"`
	Query             string  `json:"query"`
	TopK              int     `json:"top_k,omitempty"`
	DistanceThreshold float64 `json:"distance_threshold,omitempty"`
}

// QueryOutput reports retrieved chunks.
type QueryOutput struct {
	Query    string               `json:"query"`
	Contexts []*ragengine.Context `json:"contexts"`
	Count    int                  `json:"count"`
}

func (ts *Toolset) queryCorpus(ctx context.Context, in QueryInput) (QueryOutput, error) {
	if in.CorpusName == "" {
		return QueryOutput{}, fmt.Errorf("corpus_name must not be empty")
	}
	if in.Query == "" {
		return QueryOutput{}, fmt.Errorf("query must not be empty")
	}

	topK := in.TopK
	if topK <= 0 {
		topK = ts.cfg.RAG.TopK
	}
	threshold := in.DistanceThreshold
	if threshold <= 0 {
		threshold = ts.cfg.RAG.DistanceThreshold
	}

	contexts, err := ts.svc.RetrieveContexts(ctx, []string{ts.cfg.CorpusResourceName(in.CorpusName)}, in.Query, int32(topK), threshold)
	if err != nil {
		return QueryOutput{}, err
	}
	return QueryOutput{Query: in.Query, Contexts: contexts, Count: len(contexts)}, nil
}

// SearchAllInput are the arguments for search_all_corpora.
type SearchAllInput struct {
	Query             string  `json:"query"`
	TopK              int     `json:"top_k,omitempty"`
	DistanceThreshold float64 `json:"distance_threshold,omitempty"`
}

// searchAllCorpora lists every corpus and retrieves across all of them in
// a single call.
func (ts *Toolset) searchAllCorpora(ctx context.Context, in SearchAllInput) (QueryOutput, error) {
	if in.Query == "" {
		return QueryOutput{}, fmt.Errorf("query must not be empty")
	}

	var names []string
	pageToken := ""
	for {
		page, err := ts.svc.ListCorpora(ctx, int32(ts.cfg.RAG.PageSize), pageToken)
		if err != nil {
			return QueryOutput{}, err
		}
		for _, c := range page.Corpora {
			names = append(names, c.Name)
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	if len(names) == 0 {
		return QueryOutput{}, fmt.Errorf("no corpora exist in the project; create one with create_corpus first")
	}

	topK := in.TopK
	if topK <= 0 {
		topK = ts.cfg.RAG.SearchTopK
	}
	threshold := in.DistanceThreshold
	if threshold <= 0 {
		threshold = ts.cfg.RAG.DistanceThreshold
	}

	contexts, err := ts.svc.RetrieveContexts(ctx, names, in.Query, int32(topK), threshold)
	if err != nil {
		return QueryOutput{}, err
	}
	ts.logger.InfoContext(ctx, "searched all corpora",
		slog.Int("corpora", len(names)),
		slog.Int("contexts", len(contexts)),
	)
	return QueryOutput{Query: in.Query, Contexts: contexts, Count: len(contexts)}, nil
}
