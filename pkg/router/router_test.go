package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/vipani/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func tag(name string) router.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupMountsPrefixedRoutes(t *testing.T) {
	r := router.New()
	grp := r.Group("/products")
	grp.Post("", "products.create", ok)
	grp.Get("/{id}", "products.show", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("POST /products = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /products/abc = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /products = %d, want 405", rec.Code)
	}
}

func TestGroupMiddlewareRunsBeforeRouteMiddleware(t *testing.T) {
	r := router.New()
	grp := r.Group("/admin", tag("group"))
	grp.Get("/ping", "admin.ping", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))

	chain := rec.Header().Values("X-Chain")
	if len(chain) != 2 || chain[0] != "group" || chain[1] != "route" {
		t.Errorf("middleware order = %v, want [group route]", chain)
	}
}

func TestNamedRoutesAndURL(t *testing.T) {
	r := router.New()
	grp := r.Group("/products")
	grp.Put("/{id}", "products.update", ok)

	path, found := r.Path("products.update")
	if !found || path != "/products/{id}" {
		t.Errorf("Path = %q, %v", path, found)
	}

	url, err := r.URL("products.update", map[string]string{"id": "42"})
	if err != nil || url != "/products/42" {
		t.Errorf("URL = %q, %v", url, err)
	}

	if _, err := r.URL("products.update", nil); err == nil {
		t.Error("URL with missing params should fail")
	}

	table := r.Routes()
	if table["products.update"] != "/products/{id}" {
		t.Errorf("Routes() = %v", table)
	}
}
