package handler

import (
	"net/http"
)

// InfoHandler reports which deployment answered the request.
type InfoHandler struct {
	environment string
	port        string
}

func NewInfoHandler(environment, port string) *InfoHandler {
	return &InfoHandler{environment: environment, port: port}
}

// Info handles GET /info
//
// @Summary  Deployment info
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /info [get]
func (h *InfoHandler) Info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message":     "Hello from AWS App Runner!",
		"environment": h.environment,
		"port":        h.port,
	})
}
