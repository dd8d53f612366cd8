package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/models"
)

// ParseVersionParam interprets the ?version= query parameter. "latest",
// empty, or absent mean the latest version (nil); anything else must be a
// positive integer version number.
func ParseVersionParam(r *http.Request) (*int, error) {
	raw := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("version")))
	if raw == "" || raw == "latest" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: version must be 'latest' or a positive integer", apperrors.ErrInvalidInput)
	}
	return &n, nil
}

// StorageURL converts an opaque storage ref into an absolute URL using the
// request's scheme and host, matching what the review UI loads PDFs from.
func StorageURL(r *http.Request, storageRef *string) *string {
	if storageRef == nil || *storageRef == "" {
		return nil
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	ref := strings.TrimLeft(*storageRef, "/")
	url := fmt.Sprintf("%s://%s/%s", scheme, r.Host, ref)
	return &url
}

// decorateDocument fills in the derived storage URL on a document.
func decorateDocument(r *http.Request, d *models.Document) {
	d.StorageURL = StorageURL(r, d.StorageRef)
}

// decorateVersion fills in the derived storage URL on a version.
func decorateVersion(r *http.Request, v *models.DocumentVersion) {
	v.StorageURL = StorageURL(r, v.StorageRef)
}
