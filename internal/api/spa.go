package api

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// WithSPA serves the dashboard bundle in webDir for every non-API path.
// Unknown paths fall back to index.html so client-side routes resolve.
func WithSPA(apiHandler http.Handler, webDir string) http.Handler {
	return withSPAFS(apiHandler, os.DirFS(webDir))
}

func withSPAFS(apiHandler http.Handler, webFS fs.FS) http.Handler {
	fileServer := http.FileServerFS(webFS)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			apiHandler.ServeHTTP(w, r)
			return
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && name != "index.html" {
			if info, err := fs.Stat(webFS, name); err == nil && !info.IsDir() {
				setSPACacheControl(w, name)
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		serveIndex(w, webFS)
	})
}

func serveIndex(w http.ResponseWriter, webFS fs.FS) {
	data, err := fs.ReadFile(webFS, "index.html")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("index.html not found"))
		return
	}
	setSPACacheControl(w, "index.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Fingerprinted bundles under assets/ never change; everything else is
// revalidated on each load.
func setSPACacheControl(w http.ResponseWriter, name string) {
	if strings.HasPrefix(name, "assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
}
