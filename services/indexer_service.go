package services

import (
	"bufio"
	"chat-relay/auth"
	"chat-relay/domain"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// maxLineSize bounds one JSON line of the corpus.
const maxLineSize = 4 * 1024 * 1024

type DocumentIndex interface {
	Index(ctx context.Context, indexName string, documents []domain.Document) (int, error)
}

// IndexReport tells how many corpus lines made it into the index.
type IndexReport struct {
	Indexed int
	Skipped int
}

type IndexerService struct {
	log       *slog.Logger
	index     DocumentIndex
	batchSize int
}

func NewIndexerService(log *slog.Logger, index DocumentIndex, batchSize int) *IndexerService {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &IndexerService{log: log, index: index, batchSize: batchSize}
}

// Load reads one {"url","title","body"} object per line and indexes them in batches.
// Lines that do not decode or validate are skipped and counted.
func (s *IndexerService) Load(ctx context.Context, r io.Reader, indexName string) (IndexReport, error) {
	var report IndexReport
	batch := make([]domain.Document, 0, s.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.index.Index(ctx, indexName, batch)
		if err != nil {
			return err
		}
		report.Indexed += n
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return report, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var document domain.Document
		if err := json.Unmarshal(raw, &document); err != nil {
			s.log.Warn("Skipping undecodable line", "line", line, "error", err)
			report.Skipped++
			continue
		}
		if err := auth.ValidateDocument(document); err != nil {
			s.log.Warn("Skipping invalid document", "line", line, "error", err)
			report.Skipped++
			continue
		}
		batch = append(batch, document)
		if len(batch) == s.batchSize {
			if err := flush(); err != nil {
				return report, fmt.Errorf("indexing failed at line %d: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return report, err
	}
	if err := flush(); err != nil {
		return report, fmt.Errorf("indexing failed: %w", err)
	}
	return report, nil
}
