package panel

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed web/*
var content embed.FS

const indexFile = "index.html"

// Handler serves the browser client. A dir naming an existing directory is
// served from disk; otherwise the embedded copy is used.
//
// Paths without a file extension are page routes and get index.html, so a
// wall panel can bookmark any URL. A missing asset is a plain 404.
func Handler(dir string) http.Handler {
	assets := clientFS(dir)
	files := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Content-Type-Options", "nosniff")
		// Panel tokens may arrive as ?token=; keep them out of Referer.
		h.Set("Referrer-Policy", "no-referrer")

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			files.ServeHTTP(w, r)
			return
		}
		if _, err := fs.Stat(assets, name); err != nil {
			if path.Ext(name) != "" {
				http.NotFound(w, r)
				return
			}
			http.ServeFileFS(w, r, assets, indexFile)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func clientFS(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	web, err := fs.Sub(content, "web")
	if err != nil {
		// web/ is embedded at build time
		panic("panel: embedded client missing: " + err.Error())
	}
	return web
}
