// Package search keeps the Elasticsearch product index in sync with the
// primary store.
//
// The index is a denormalized mirror, never a source of truth: every sync
// replaces the whole document for a product id, so re-running a sync with
// the same snapshot is harmless and at-least-once delivery upstream is safe.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
)

// mapping is the fixed field-type schema for the product index, matching
// the shape of models.SearchDocument.
const mapping = `{
  "mappings": {
    "properties": {
      "title":       { "type": "text" },
      "description": { "type": "text" },
      "category":    { "type": "keyword" },
      "price":       { "type": "float" },
      "quantity":    { "type": "integer" },
      "image":       { "type": "text" },
      "seller": {
        "properties": {
          "id":         { "type": "keyword" },
          "profileUrl": { "type": "text" }
        }
      }
    }
  }
}`

// Config holds the connection settings for the index.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string // index name, fixed per deployment
}

// Index wraps an Elasticsearch client scoped to one product index.
type Index struct {
	es   *elasticsearch.Client
	name string
}

// New builds the client. It does not touch the cluster; call EnsureSchema
// at startup to bootstrap the index.
func New(cfg Config) (*Index, error) {
	if cfg.Index == "" {
		return nil, fmt.Errorf("search: index name is required")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}

	return &Index{es: es, name: cfg.Index}, nil
}

// Name returns the index name.
func (i *Index) Name() string { return i.name }

// EnsureSchema creates the index with its fixed mapping when it does not
// exist yet. Safe to call on every startup.
func (i *Index) EnsureSchema(ctx context.Context) error {
	res, err := i.es.Indices.Exists(
		[]string{i.name},
		i.es.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: check index %s: %w", i.name, err)
	}
	drain(res.Body)

	if res.StatusCode == 200 {
		return nil
	}

	created, err := i.es.Indices.Create(
		i.name,
		i.es.Indices.Create.WithBody(strings.NewReader(mapping)),
		i.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: create index %s: %w", i.name, err)
	}
	defer drain(created.Body)

	if created.IsError() {
		return fmt.Errorf("search: create index %s: %s", i.name, created.String())
	}
	return nil
}

// Upsert replaces the whole document for id. Idempotent.
func (i *Index) Upsert(ctx context.Context, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: marshal document %s: %w", id, err)
	}

	res, err := i.es.Index(
		i.name,
		bytes.NewReader(body),
		i.es.Index.WithDocumentID(id),
		i.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index %s: %w", id, err)
	}
	defer drain(res.Body)

	if res.IsError() {
		return fmt.Errorf("search: index %s: %s", id, res.String())
	}
	return nil
}

// Remove deletes the document for id. Removing an absent document is not an
// error.
func (i *Index) Remove(ctx context.Context, id string) error {
	res, err := i.es.Delete(
		i.name,
		id,
		i.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete %s: %w", id, err)
	}
	defer drain(res.Body)

	if res.StatusCode == 404 {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("search: delete %s: %s", id, res.String())
	}
	return nil
}

// drain consumes and closes a response body so the transport can reuse the
// connection.
func drain(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
