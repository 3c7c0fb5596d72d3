package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// validationRouter mounts handlers over a nil DB: only request paths
// that are rejected before any storage access are exercised here.
func validationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	g := router.Group("/api")
	NewMilestoneHandler(nil, nil).Register(g)
	NewPolicyHandler(nil, nil).Register(g)
	return router
}

func putJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("PUT", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMilestoneCreateValidation(t *testing.T) {
	router := validationRouter()

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"track":"admin","weight":10}`},
		{"bad track", `{"name":"x","track":"finance","weight":10}`},
		{"weight too high", `{"name":"x","track":"admin","weight":101}`},
		{"negative weight", `{"name":"x","track":"engineering","weight":-1}`},
		{"missing weight", `{"name":"x","track":"admin"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(router, "/api/milestones", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestPolicyUpdateValidation(t *testing.T) {
	router := validationRouter()

	cases := []struct {
		name string
		path string
		body string
	}{
		{"unknown table", "/api/policies/widgets", `{"mode":"soft_delete","retentionDays":30}`},
		{"unknown mode", "/api/policies/projects", `{"mode":"vaporize","retentionDays":30}`},
		{"negative retention", "/api/policies/projects", `{"mode":"archive","retentionDays":-1}`},
		{"missing retention", "/api/policies/projects", `{"mode":"soft_delete"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := putJSON(router, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestSetCompletionValidation(t *testing.T) {
	router := validationRouter()

	// non-numeric path params fail before anything else
	w := putJSON(router, "/api/projects/abc/milestones/1", `{"completed":true}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad project id, got %d", w.Code)
	}

	w = putJSON(router, "/api/projects/1/milestones/0", `{"completed":true}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for zero milestone id, got %d", w.Code)
	}
}
