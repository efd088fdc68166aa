package formsets

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestMountPaths_JoinsBasePath(t *testing.T) {
	got := MountPaths("/admin/")
	if got.Rows != "/admin/formsets/rows" || got.Previews != "/admin/formsets/previews" {
		t.Fatalf("unexpected mount paths: %+v", got)
	}
	if got := MountPaths("api", WithRowsPath("rows")); got.Rows != "/api/rows" {
		t.Fatalf("unexpected rows path: %q", got.Rows)
	}
}

func TestRegisterRoutes_RegistersHandlers(t *testing.T) {
	mux := http.NewServeMux()
	routes, err := New().RegisterRoutes(mux, "/admin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	body := url.Values{"prefix": {"images"}, "total": {"0"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, routes.Rows, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRegisterRoutes_RejectsSharedPath(t *testing.T) {
	_, err := RegisterRoutes(http.NewServeMux(), "/", WithRowsPath("/x"), WithPreviewsPath("/x"))
	if err == nil {
		t.Fatalf("expected error for shared path")
	}
	if _, err := RegisterRoutes(nil, "/"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
