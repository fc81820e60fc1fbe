package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var apiStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("API"))
})

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestWithSPAServesStaticAndIndex(t *testing.T) {
	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("INDEX"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "favicon.svg"), []byte("<svg/>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(webDir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "assets", "index-abc123.js"), []byte("APP"), 0o644))

	h := WithSPA(apiStub, webDir)

	rr := serve(h, "/api/health")
	assert.Equal(t, "API", rr.Body.String())

	rr = serve(h, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "INDEX", rr.Body.String())
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = serve(h, "/assets/index-abc123.js")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "APP", rr.Body.String())
	assert.Contains(t, rr.Header().Get("Cache-Control"), "immutable")

	rr = serve(h, "/favicon.svg")
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	rr = serve(h, "/analyzer/green-energy")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "INDEX", rr.Body.String())

	rr = serve(h, "/../../etc/passwd")
	assert.Equal(t, "INDEX", rr.Body.String())
}

func TestWithSPAIndexMissing(t *testing.T) {
	h := withSPAFS(apiStub, fstest.MapFS{})

	rr := serve(h, "/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "index.html not found", rr.Body.String())
}

func TestWithSPAIndexHTMLDirect(t *testing.T) {
	h := withSPAFS(apiStub, fstest.MapFS{"index.html": {Data: []byte("INDEX")}})

	rr := serve(h, "/index.html")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "INDEX", rr.Body.String())
}
