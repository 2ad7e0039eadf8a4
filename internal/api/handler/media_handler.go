package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/runnerkit/hello-service/internal/domain"
)

// ObjectLocator is the slice of storage.S3Store needed to resolve public URLs.
type ObjectLocator interface {
	Exists(ctx context.Context, name string) (bool, error)
	URL(name string) (string, error)
}

// MediaHandler redirects /media/* and /static/* to the object store's
// public URLs, so the service never proxies object bodies.
type MediaHandler struct {
	media  ObjectLocator
	static ObjectLocator
}

func NewMediaHandler(media, static ObjectLocator) *MediaHandler {
	return &MediaHandler{media: media, static: static}
}

// Media handles GET /media/*. Missing objects answer 404.
func (h *MediaHandler) Media(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	ok, err := h.media.Exists(r.Context(), name)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidKey) {
			err = fmt.Errorf("%w: %w", domain.ErrDependencyUnavailable, err)
		}
		mapError(w, err)
		return
	}
	if !ok {
		mapError(w, domain.ErrNotFound)
		return
	}
	target, err := h.media.URL(name)
	if err != nil {
		mapError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Static handles GET /static/*. Static assets are immutable per release,
// so no existence check is made.
func (h *MediaHandler) Static(w http.ResponseWriter, r *http.Request) {
	target, err := h.static.URL(chi.URLParam(r, "*"))
	if err != nil {
		mapError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}
