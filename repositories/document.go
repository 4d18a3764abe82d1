package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blugelabs/bluge"
)

const (
	fieldURL   = "url"
	fieldTitle = "title"
	fieldBody  = "body"
)

// DocumentRepository serves the recommendation indexes, one Bluge index per name
// under a common root directory.
type DocumentRepository struct {
	root       string
	searchSize int
	log        *slog.Logger
	mu         sync.Mutex
	writers    map[string]*bluge.Writer
}

func NewDocumentRepository(root string, searchSize int, log *slog.Logger) *DocumentRepository {
	return &DocumentRepository{
		root:       root,
		searchSize: searchSize,
		log:        log,
		writers:    make(map[string]*bluge.Writer),
	}
}

// Index adds or replaces documents in the named index, keyed by URL.
// The index is created when it does not exist yet.
func (d *DocumentRepository) Index(_ context.Context, indexName string, documents []domain.Document) (int, error) {
	writer, err := d.writer(indexName, true)
	if err != nil {
		return 0, err
	}
	batch := bluge.NewBatch()
	for _, document := range documents {
		doc := bluge.NewDocument(document.URL).
			AddField(bluge.NewTextField(fieldTitle, document.Title).StoreValue()).
			AddField(bluge.NewTextField(fieldBody, document.Body)).
			AddField(bluge.NewKeywordField(fieldURL, document.URL).StoreValue())
		batch.Update(doc.ID(), doc)
	}
	if err := writer.Batch(batch); err != nil {
		return 0, fmt.Errorf("unable to index documents: %w", err)
	}
	d.log.Debug(fmt.Sprintf("Indexed %d documents", len(documents)), "index", indexName)
	return len(documents), nil
}

// Search returns the documents of indexName matching queryText, best match first.
func (d *DocumentRepository) Search(ctx context.Context, indexName, queryText string) ([]domain.Source, error) {
	writer, err := d.writer(indexName, false)
	if err != nil {
		return nil, err
	}
	reader, err := writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(queryText).SetField(fieldBody)).
		AddShould(bluge.NewMatchQuery(queryText).SetField(fieldTitle).SetBoost(2))
	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(d.searchSize, query))
	if err != nil {
		return nil, err
	}

	var sources []domain.Source
	match, err := dmi.Next()
	for err == nil && match != nil {
		var source domain.Source
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldURL:
				source.URL = string(value)
			case fieldTitle:
				source.Title = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// Close releases every opened index.
func (d *DocumentRepository) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var firstErr error
	for name, writer := range d.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(d.writers, name)
	}
	return firstErr
}

func (d *DocumentRepository) writer(indexName string, create bool) (*bluge.Writer, error) {
	if indexName == "" || filepath.Base(indexName) != indexName {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownIndex, indexName)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if writer, ok := d.writers[indexName]; ok {
		return writer, nil
	}
	path := filepath.Join(d.root, indexName)
	if !create {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownIndex, indexName)
		}
	}
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	d.writers[indexName] = writer
	return writer, nil
}
