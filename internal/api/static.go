package api

import (
	"fmt"
	"io/fs"
	"net/http"
	"path"
)

// staticHandler serves the embedded stylesheet and browser script.
//
// Unlike pages, a missing asset is a plain 404. Panics if the embedded
// assets cannot be loaded (build error).
func staticHandler() http.Handler {
	staticFS, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(fmt.Sprintf("api: failed to load embedded static assets: %v", err))
	}
	fileServer := http.FileServer(http.FS(staticFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upath := path.Clean(r.URL.Path)
		if upath == "." || upath == "/" {
			http.NotFound(w, r)
			return
		}

		// Assets are not content-hashed, so browsers must revalidate.
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")
		fileServer.ServeHTTP(w, r)
	})
}
