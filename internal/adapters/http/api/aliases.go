package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

type aliasResponse struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

func (*aliasResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// handleAliases returns the spelling group a team name belongs to.
func (s *Server) handleAliases(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		renderFieldErrors(w, r, []FieldError{{Field: "name", Message: "is required"}})
		return
	}

	variants := s.deps.Aliases(name)
	if len(variants) == 0 {
		render.Status(r, http.StatusNotFound)
		_ = render.Render(w, r, &errorResponse{
			Error: "name has no known alias group",
			Code:  "unknown_name",
		})
		return
	}

	_ = render.Render(w, r, &aliasResponse{Name: name, Aliases: variants})
}
