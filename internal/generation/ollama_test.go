package generation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListOllamaModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3.2"},{"name":"codellama:13b"}]}`))
	}))
	defer srv.Close()

	models := ListOllamaModels(context.Background(), srv.URL)
	assert.Equal(t, []string{"llama3.2", "codellama:13b"}, models)
}

func TestListOllamaModelsUnreachableReturnsNil(t *testing.T) {
	// Point at a closed port.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	assert.Nil(t, ListOllamaModels(context.Background(), srv.URL))
}

func TestListOllamaModelsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.Nil(t, ListOllamaModels(context.Background(), srv.URL))
}
