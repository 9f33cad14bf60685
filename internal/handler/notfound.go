package handler

import (
	"net/http"

	"github.com/zuery/zuery/internal/models"
)

// NotFound is used for unknown paths and for wrong methods on known paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	models.WriteError(w, http.StatusNotFound, "Not found")
}
