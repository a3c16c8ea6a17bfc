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

package ragengine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"google.golang.org/api/iterator"
)

// ImportFromGCS imports documents from Cloud Storage URIs into a corpus.
// The managed service chunks and embeds the documents; chunkSize and
// chunkOverlap of zero fall back to service defaults.
func (s *Service) ImportFromGCS(ctx context.Context, corpusName string, gcsURIs []string, chunkSize, chunkOverlap int32) (*ImportResult, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.ImportFromGCS")
	defer span.End()

	corpusName = s.CorpusName(corpusName)
	if err := ValidateCorpusName(corpusName); err != nil {
		return nil, err
	}
	if len(gcsURIs) == 0 {
		return nil, fmt.Errorf("at least one gs:// URI is required")
	}
	for _, uri := range gcsURIs {
		if !strings.HasPrefix(uri, "gs://") {
			return nil, fmt.Errorf("not a gs:// URI: %s", uri)
		}
	}

	s.logger.InfoContext(ctx, "Importing documents into RAG corpus",
		slog.String("corpus", corpusName),
		slog.Int("uris", len(gcsURIs)),
		slog.Int("chunk_size", int(chunkSize)),
		slog.Int("chunk_overlap", int(chunkOverlap)),
	)

	cfg := &aiplatformpb.ImportRagFilesConfig{
		ImportSource: &aiplatformpb.ImportRagFilesConfig_GcsSource{
			GcsSource: &aiplatformpb.GcsSource{Uris: gcsURIs},
		},
	}
	if chunkSize > 0 {
		cfg.RagFileChunkingConfig = &aiplatformpb.RagFileChunkingConfig{
			ChunkSize:    chunkSize,
			ChunkOverlap: chunkOverlap,
		}
	}

	op, err := s.ragDataClient.ImportRagFiles(ctx, &aiplatformpb.ImportRagFilesRequest{
		Parent:               corpusName,
		ImportRagFilesConfig: cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import documents: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for document import: %w", err)
	}

	result := &ImportResult{
		ImportedCount: resp.GetImportedRagFilesCount(),
		FailedCount:   resp.GetFailedRagFilesCount(),
		SkippedCount:  resp.GetSkippedRagFilesCount(),
	}
	s.logger.InfoContext(ctx, "Document import finished",
		slog.Int64("imported", result.ImportedCount),
		slog.Int64("failed", result.FailedCount),
	)
	return result, nil
}

// ListFiles lists documents in a corpus.
func (s *Service) ListFiles(ctx context.Context, corpusName string, pageSize int32, pageToken string) (*FilePage, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.ListFiles")
	defer span.End()

	corpusName = s.CorpusName(corpusName)
	if err := ValidateCorpusName(corpusName); err != nil {
		return nil, err
	}

	req := &aiplatformpb.ListRagFilesRequest{
		Parent:    corpusName,
		PageSize:  pageSize,
		PageToken: pageToken,
	}

	it := s.ragDataClient.ListRagFiles(ctx, req)
	var files []*File
	for {
		pbFile, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list files in %s: %w", corpusName, err)
		}
		files = append(files, fileFromPb(pbFile))
	}

	var nextPageToken string
	if resp, ok := it.Response.(*aiplatformpb.ListRagFilesResponse); ok && resp != nil {
		nextPageToken = resp.GetNextPageToken()
	}

	s.logger.InfoContext(ctx, "Listed RAG files",
		slog.String("corpus", corpusName),
		slog.Int("count", len(files)),
	)
	return &FilePage{Files: files, NextPageToken: nextPageToken}, nil
}

// GetFile retrieves one rag file by resource name.
func (s *Service) GetFile(ctx context.Context, fileName string) (*File, error) {
	ctx, span := s.tracer.Start(ctx, "ragengine.GetFile")
	defer span.End()

	if err := ValidateFileName(fileName); err != nil {
		return nil, err
	}

	pbFile, err := s.ragDataClient.GetRagFile(ctx, &aiplatformpb.GetRagFileRequest{Name: fileName})
	if err != nil {
		return nil, fmt.Errorf("failed to get RAG file %s: %w", fileName, err)
	}
	return fileFromPb(pbFile), nil
}

// DeleteFile deletes one rag file.
func (s *Service) DeleteFile(ctx context.Context, fileName string) error {
	ctx, span := s.tracer.Start(ctx, "ragengine.DeleteFile")
	defer span.End()

	if err := ValidateFileName(fileName); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Deleting RAG file",
		slog.String("name", fileName),
	)

	op, err := s.ragDataClient.DeleteRagFile(ctx, &aiplatformpb.DeleteRagFileRequest{Name: fileName})
	if err != nil {
		return fmt.Errorf("failed to delete RAG file %s: %w", fileName, err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for RAG file deletion: %w", err)
	}
	return nil
}

// fileFromPb converts a protobuf RagFile to the package type.
func fileFromPb(pb *aiplatformpb.RagFile) *File {
	if pb == nil {
		return nil
	}

	file := &File{
		Name:        pb.GetName(),
		DisplayName: pb.GetDisplayName(),
		Description: pb.GetDescription(),
		SizeBytes:   pb.GetSizeBytes(),
	}

	if pb.GetCreateTime() != nil {
		t := pb.GetCreateTime().AsTime()
		file.CreateTime = &t
	}

	switch pb.GetFileStatus().GetState() {
	case aiplatformpb.FileStatus_ACTIVE:
		file.State = FileStateActive
	case aiplatformpb.FileStatus_ERROR:
		file.State = FileStateError
	default:
		file.State = FileStateUnspecified
	}

	if gcs, ok := pb.GetRagFileSource().(*aiplatformpb.RagFile_GcsSource); ok {
		file.SourceURIs = gcs.GcsSource.GetUris()
	}

	return file
}
