package ginjsonscope_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jsonscope/jsonscope/pkg/ginjsonscope"
	"github.com/jsonscope/jsonscope/pkg/jsonscope"
)

func newRouter(opts ...jsonscope.Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ginjsonscope.Routes(r, opts...)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	w := postJSON(t, newRouter(), "/analyze", `{"a": {"b": 1}, "c": [1, 2, 3]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var rep jsonscope.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("response did not decode as a report: %v", err)
	}
	if rep.Tier != jsonscope.TierStandard {
		t.Errorf("tier = %s, want standard", rep.Tier)
	}
	if rep.Stats.ObjectCount != 2 || rep.Stats.ArrayCount != 1 {
		t.Errorf("stats = %+v", rep.Stats)
	}
	if rep.Nodes["a.b"] == nil {
		t.Error("expected node at a.b in response")
	}
}

func TestAnalyzeEndpointDamagedDocumentStill200(t *testing.T) {
	w := postJSON(t, newRouter(), "/analyze", `{"a":1,,"b":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for damaged input", w.Code)
	}

	var rep jsonscope.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Tier != jsonscope.TierStreaming || !rep.Partial {
		t.Errorf("tier=%s partial=%v, want streaming and partial", rep.Tier, rep.Partial)
	}
	if len(rep.Errors) != 1 {
		t.Errorf("errors = %+v, want exactly one", rep.Errors)
	}
}

func TestAnalyzeEndpointQueryOptions(t *testing.T) {
	w := postJSON(t, newRouter(), "/analyze?sample_limit=2&structure_only=true", `{"k": [1, 2, 3, 4, 5]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var rep jsonscope.Report
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if n := rep.Nodes["k"]; n == nil || !n.Truncated || n.Length != 5 {
		t.Errorf("node k = %+v, want truncated array of length 5", rep.Nodes["k"])
	}
	if rep.Nodes["k[2]"] != nil {
		t.Error("sample_limit=2 should drop element [2]")
	}
	if root := rep.Nodes[jsonscope.RootPath]; root != nil && len(root.Keys) != 0 {
		t.Errorf("structure_only should drop keys, got %v", root.Keys)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	w := postJSON(t, newRouter(), "/schema", `{"name": "x", "n": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var s struct {
		Type       string                       `json:"type"`
		Properties map[string]map[string]string `json:"properties"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("response did not decode as a schema: %v", err)
	}
	if s.Type != "object" {
		t.Errorf("type = %q, want object", s.Type)
	}
	if s.Properties["name"]["type"] != "string" || s.Properties["n"]["type"] != "number" {
		t.Errorf("properties = %+v", s.Properties)
	}
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("body = %q", w.Body.String())
	}
}
