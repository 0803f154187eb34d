package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/vipani/app/controllers"
	"github.com/shashiranjanraj/vipani/app/models"
	"github.com/shashiranjanraj/vipani/app/routes"
	"github.com/shashiranjanraj/vipani/app/services"
	"github.com/shashiranjanraj/vipani/pkg/auth"
	"github.com/shashiranjanraj/vipani/pkg/router"
)

// ─── Fake orchestrator ────────────────────────────────────────────────────────

type call struct {
	op    string
	id    string
	actor string
	in    services.ProductInput
}

type fakeOrchestrator struct {
	calls []call
	view  models.ProductView
	views []models.ProductView
	err   error
}

func (f *fakeOrchestrator) Create(_ context.Context, in services.ProductInput, actor string) (models.ProductView, error) {
	f.calls = append(f.calls, call{op: "create", actor: actor, in: in})
	return f.view, f.err
}

func (f *fakeOrchestrator) Read(_ context.Context, id string) (models.ProductView, error) {
	f.calls = append(f.calls, call{op: "read", id: id})
	return f.view, f.err
}

func (f *fakeOrchestrator) List(_ context.Context) ([]models.ProductView, error) {
	f.calls = append(f.calls, call{op: "list"})
	return f.views, f.err
}

func (f *fakeOrchestrator) Update(_ context.Context, id string, in services.ProductInput, actor string) (models.ProductView, error) {
	f.calls = append(f.calls, call{op: "update", id: id, actor: actor, in: in})
	return f.view, f.err
}

func (f *fakeOrchestrator) Delete(_ context.Context, id string, actor string) error {
	f.calls = append(f.calls, call{op: "delete", id: id, actor: actor})
	return f.err
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func newHandler(t *testing.T) (*fakeOrchestrator, http.Handler) {
	t.Helper()
	fake := &fakeOrchestrator{}
	r := router.New()
	routes.RegisterAPI(r, controllers.NewProductController(fake))
	return fake, r.Handler()
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonReq(t *testing.T, method, target string, body map[string]interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ─── Auth and roles ───────────────────────────────────────────────────────────

func TestRoutesRejectMissingToken(t *testing.T) {
	_, h := newHandler(t)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutesRejectGarbageToken(t *testing.T) {
	_, h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, do(h, req).Code)
}

func TestWritesRequireShopOwnerRole(t *testing.T) {
	fake, h := newHandler(t)

	req := jsonReq(t, http.MethodPost, "/products", map[string]interface{}{"title": "Chair"})
	req.Header.Set("Authorization", bearer(t, "user-1", auth.RoleUser))

	assert.Equal(t, http.StatusForbidden, do(h, req).Code)
	assert.Empty(t, fake.calls, "handler must not run for a forbidden role")
}

func TestReadsAllowPlainUsers(t *testing.T) {
	fake, h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", bearer(t, "user-1", auth.RoleUser))

	assert.Equal(t, http.StatusOK, do(h, req).Code)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "list", fake.calls[0].op)
}

// ─── Create ───────────────────────────────────────────────────────────────────

func TestCreateJSONPassesActorAndFields(t *testing.T) {
	fake, h := newHandler(t)
	fake.view = models.ProductView{
		Product:  models.Product{ID: primitive.NewObjectID(), Title: "Chair"},
		Category: "Furniture",
	}

	req := jsonReq(t, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Chair",
		"category_id": "64b000000000000000000001",
		"price":       79.5,
		"quantity":    4,
	})
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	rec := do(h, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, fake.calls, 1)
	c := fake.calls[0]
	assert.Equal(t, "create", c.op)
	assert.Equal(t, "owner-1", c.actor)
	assert.Equal(t, "Chair", c.in.Title)
	assert.Equal(t, 79.5, c.in.Price)
	assert.Equal(t, 4, c.in.Quantity)

	body := decode(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Chair", data["title"])
	assert.Equal(t, "Furniture", data["category"])
}

func TestCreateMultipartCarriesUploads(t *testing.T) {
	fake, h := newHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Chair"))
	require.NoError(t, mw.WriteField("category_id", "64b000000000000000000001"))
	require.NoError(t, mw.WriteField("price", "79.5"))
	fw, err := mw.CreateFormFile("image", "chair.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	require.Equal(t, http.StatusCreated, do(h, req).Code)

	require.Len(t, fake.calls, 1)
	in := fake.calls[0].in
	assert.Equal(t, "Chair", in.Title)
	assert.Equal(t, 79.5, in.Price)
	require.NotNil(t, in.Image)
	assert.Equal(t, "chair.jpg", in.Image.Filename)
	assert.Equal(t, []byte("jpeg-bytes"), in.Image.Data)
	assert.Nil(t, in.ProfileImage)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	fake, h := newHandler(t)

	req := jsonReq(t, http.MethodPost, "/products", map[string]interface{}{"price": 10})
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	rec := do(h, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, fake.calls)

	errs := decode(t, rec)["errors"].(map[string]interface{})
	assert.Equal(t, "is required", errs["title"])
	assert.Equal(t, "is required", errs["category_id"])
}

func TestCreateRejectsMalformedNumbers(t *testing.T) {
	fake, h := newHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Chair"))
	require.NoError(t, mw.WriteField("category_id", "64b000000000000000000001"))
	require.NoError(t, mw.WriteField("price", "cheap"))
	require.NoError(t, mw.WriteField("quantity", "-2"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	rec := do(h, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, fake.calls)

	errs := decode(t, rec)["errors"].(map[string]interface{})
	assert.Equal(t, "must be a number", errs["price"])
	assert.Equal(t, "must not be negative", errs["quantity"])
}

func TestCreateMapsBlobStoreUnavailable(t *testing.T) {
	fake, h := newHandler(t)
	fake.err = services.ErrBlobStoreNotReady

	req := jsonReq(t, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Chair",
		"category_id": "64b000000000000000000001",
	})
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	rec := do(h, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Storage unavailable", decode(t, rec)["message"])
}

// ─── Show / Update / Delete ───────────────────────────────────────────────────

func TestShowMapsNotFound(t *testing.T) {
	fake, h := newHandler(t)
	fake.err = services.ErrProductNotFound

	req := httptest.NewRequest(http.MethodGet, "/products/64b000000000000000000009", nil)
	req.Header.Set("Authorization", bearer(t, "user-1", auth.RoleUser))

	rec := do(h, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["message"])
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "64b000000000000000000009", fake.calls[0].id)
}

func TestUpdateMapsForbiddenOwnership(t *testing.T) {
	fake, h := newHandler(t)
	fake.err = services.ErrNotOwner

	req := jsonReq(t, http.MethodPut, "/products/64b000000000000000000009",
		map[string]interface{}{"title": "New title"})
	req.Header.Set("Authorization", bearer(t, "owner-2", auth.RoleShopOwner))

	assert.Equal(t, http.StatusForbidden, do(h, req).Code)
}

func TestUpdatePassesPartialInputThrough(t *testing.T) {
	fake, h := newHandler(t)

	req := jsonReq(t, http.MethodPut, "/products/64b000000000000000000009",
		map[string]interface{}{"price": 120})
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	require.Equal(t, http.StatusOK, do(h, req).Code)
	require.Len(t, fake.calls, 1)
	c := fake.calls[0]
	assert.Equal(t, "update", c.op)
	assert.Equal(t, "owner-1", c.actor)
	assert.Equal(t, 120.0, c.in.Price)
	assert.Empty(t, c.in.Title, "absent fields must stay zero")
}

func TestDeleteReturnsMessage(t *testing.T) {
	fake, h := newHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/products/64b000000000000000000009", nil)
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", decode(t, rec)["message"])
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "delete", fake.calls[0].op)
	assert.Equal(t, "owner-1", fake.calls[0].actor)
}

func TestUnknownCategoryMapsTo404(t *testing.T) {
	fake, h := newHandler(t)
	fake.err = services.ErrCategoryNotFound

	req := jsonReq(t, http.MethodPost, "/products", map[string]interface{}{
		"title":       "Chair",
		"category_id": "64b000000000000000000002",
	})
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	rec := do(h, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category not found", decode(t, rec)["message"])
}

func TestJSONBodyRejectsGarbage(t *testing.T) {
	fake, h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "owner-1", auth.RoleShopOwner))

	assert.Equal(t, http.StatusBadRequest, do(h, req).Code)
	assert.Empty(t, fake.calls)
}
