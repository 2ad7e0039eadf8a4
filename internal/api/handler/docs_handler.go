package handler

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

//go:embed openapi.yaml
var openAPISpec []byte

// DocsHandler serves the OpenAPI document and the Swagger UI around it.
type DocsHandler struct {
	ui http.Handler
}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{
		ui: httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.yaml"),
		),
	}
}

func (h *DocsHandler) RedirectToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusTemporaryRedirect)
}

func (h *DocsHandler) UI(w http.ResponseWriter, r *http.Request) {
	h.ui.ServeHTTP(w, r)
}

func (h *DocsHandler) Spec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}
