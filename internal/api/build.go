package api

import "net/http"

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/yegors/vatmap/internal/api.Version=v1.2.3 -X github.com/yegors/vatmap/internal/api.Commit=abc1234"
var (
	Version = "dev"
	Commit  = "none"
)

// GetBuild reports the running build
func (h *Handler) GetBuild(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"version": Version,
		"commit":  Commit,
	})
}
