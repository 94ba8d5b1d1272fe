package httpapi

import (
	_ "embed"
	"net/http"
)

//go:embed ui/index.html
var uiPage []byte

// handleUI serves the single-page upload widget.
func handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(uiPage)
}
