package api

import (
	"embed"
	"net/http"
)

//go:embed web/uploader.html
var webFS embed.FS

// HandleUploaderPage serves the embedded browser uploader. The page fetches
// /config for the deployment's constraints, validates the selected file
// locally, requests a grant from /uploads and PUTs the bytes directly to the
// capability URL.
func HandleUploaderPage(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("web/uploader.html")
	if err != nil {
		http.Error(w, "uploader page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
