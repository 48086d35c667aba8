package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.eggybyte.com/stackgen/internal/configschema"
	"go.eggybyte.com/stackgen/internal/testingx"
)

const projectJSON = `{"name":"shop","frontend":"web","backend":"api","app":"shop-ui","mobile_app":"shop_app","backend_package":"com.example.shop"}`

const productJSON = `[{"name":"Product","columns":[{"name":"id","type":"number"},{"name":"name","type":"string"},{"name":"price","type":"number"}]}]`

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndTargets(t *testing.T) {
	srv := NewServer()

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on every response")
	}

	rec = do(t, srv, http.MethodGet, "/v1/targets", "")
	var body struct {
		Targets []string `json:"targets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(body.Targets, ",") != "backend,frontend,mobile" {
		t.Errorf("targets = %v", body.Targets)
	}

	rec = do(t, srv, http.MethodGet, "/v1/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	logger := testingx.NewMockLogger(t)
	srv := NewServer(WithLogger(logger))

	rec := do(t, srv, http.MethodPost, "/v1/render",
		`{"entities":`+productJSON+`,"project":`+projectJSON+`,"targets":["frontend"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp RenderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Files) == 0 {
		t.Fatal("Expected rendered files")
	}
	found := false
	for _, f := range resp.Files {
		if f.Target != "frontend" {
			t.Errorf("unexpected target %s for %s", f.Target, f.Path)
		}
		if f.Path == "shop/web/shop-ui/src/app/core/services/product.service.ts" {
			found = true
			if !strings.Contains(f.Content, "'/api/products'") {
				t.Errorf("service content = %s", f.Content)
			}
		}
	}
	if !found {
		t.Error("Expected the product service in the response")
	}
	if len(resp.Diagnostics) != 0 {
		t.Errorf("Expected no diagnostics, got %v", resp.Diagnostics)
	}
	logger.AssertLogged("DEBUG", "request handled")
}

func TestRenderWarnings(t *testing.T) {
	body := `{"entities":[{"name":"Product","columns":[{"name":"name","type":"string"}]},{"name":"product","columns":[{"name":"sku","type":"string"}]}],"project":` + projectJSON + `}`
	rec := do(t, NewServer(), http.MethodPost, "/v1/render", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp RenderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	warned := false
	for _, d := range resp.Diagnostics {
		if d.Severity == configschema.SeverityWarning {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Expected a duplicate entity warning, got %v", resp.Diagnostics)
	}
}

func TestRenderRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantPath string
	}{
		{name: "malformed json", body: `{"entities":`},
		{name: "missing project", body: `{"entities":` + productJSON + `}`, wantPath: "project"},
		{name: "unknown target", body: `{"entities":` + productJSON + `,"project":` + projectJSON + `,"targets":["desktop"]}`, wantPath: "targets"},
		{name: "invalid package", body: `{"entities":` + productJSON + `,"project":` + strings.Replace(projectJSON, "com.example.shop", "com.class.shop", 1) + `}`, wantPath: "project.backend_package"},
		{name: "invalid entity name", body: `{"entities":[{"name":"bad name","columns":[]}],"project":` + projectJSON + `}`, wantPath: "entities[0].name"},
	}

	srv := NewServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/v1/render", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if tt.wantPath == "" {
				return
			}
			for _, d := range resp.Diagnostics {
				if d.Severity == configschema.SeverityError && d.Path == tt.wantPath {
					return
				}
			}
			t.Errorf("Expected an error diagnostic at %s, got %v", tt.wantPath, resp.Diagnostics)
		})
	}
}
