package search_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vipani/pkg/search"
)

type recorded struct {
	method string
	path   string
	body   []byte
}

// fakeES records every request and answers with canned statuses per
// method+path. Responses carry the product header the client verifies.
type fakeES struct {
	requests []recorded
	status   map[string]int // "METHOD /path" → status, default 200
}

func (f *fakeES) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.Path, body: body})

		status := http.StatusOK
		if s, ok := f.status[r.Method+" "+r.URL.Path]; ok {
			status = s
		}

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{}`)) //nolint:errcheck
	})
}

func newIndex(t *testing.T, fake *fakeES) *search.Index {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	idx, err := search.New(search.Config{
		Addresses: []string{srv.URL},
		Index:     "products_test",
	})
	require.NoError(t, err)
	return idx
}

func TestNewRequiresIndexName(t *testing.T) {
	_, err := search.New(search.Config{Addresses: []string{"http://localhost:9200"}})
	require.Error(t, err)
}

func TestUpsertReplacesDocumentByID(t *testing.T) {
	fake := &fakeES{}
	idx := newIndex(t, fake)

	doc := map[string]interface{}{"title": "Oak chair", "category": "Furniture"}
	require.NoError(t, idx.Upsert(context.Background(), "abc123", doc))

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/products_test/_doc/abc123", req.path)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal(req.body, &sent))
	assert.Equal(t, "Oak chair", sent["title"])
}

func TestUpsertSurfacesServerError(t *testing.T) {
	fake := &fakeES{status: map[string]int{
		"PUT /products_test/_doc/abc123": http.StatusInternalServerError,
	}}
	idx := newIndex(t, fake)

	err := idx.Upsert(context.Background(), "abc123", map[string]string{"title": "x"})
	require.Error(t, err)
}

func TestRemoveDeletesDocument(t *testing.T) {
	fake := &fakeES{}
	idx := newIndex(t, fake)

	require.NoError(t, idx.Remove(context.Background(), "abc123"))

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodDelete, fake.requests[0].method)
	assert.Equal(t, "/products_test/_doc/abc123", fake.requests[0].path)
}

func TestRemoveAbsentDocumentIsNoError(t *testing.T) {
	fake := &fakeES{status: map[string]int{
		"DELETE /products_test/_doc/gone": http.StatusNotFound,
	}}
	idx := newIndex(t, fake)

	assert.NoError(t, idx.Remove(context.Background(), "gone"))
}

func TestEnsureSchemaCreatesMissingIndex(t *testing.T) {
	fake := &fakeES{status: map[string]int{
		"HEAD /products_test": http.StatusNotFound,
	}}
	idx := newIndex(t, fake)

	require.NoError(t, idx.EnsureSchema(context.Background()))

	require.Len(t, fake.requests, 2)
	create := fake.requests[1]
	assert.Equal(t, http.MethodPut, create.method)
	assert.Equal(t, "/products_test", create.path)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(create.body, &body))
	props := body["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Equal(t, "keyword", props["category"].(map[string]interface{})["type"])
	seller := props["seller"].(map[string]interface{})["properties"].(map[string]interface{})
	assert.Equal(t, "keyword", seller["id"].(map[string]interface{})["type"])
}

func TestEnsureSchemaSkipsExistingIndex(t *testing.T) {
	fake := &fakeES{}
	idx := newIndex(t, fake)

	require.NoError(t, idx.EnsureSchema(context.Background()))

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodHead, fake.requests[0].method)
}
