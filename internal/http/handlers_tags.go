package http

import (
	"net/http"

	"budgetku/internal/core"
	"budgetku/internal/log"
)

type tagRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTags(w http.ResponseWriter, _ *http.Request) {
	colors := s.store.TagColors()
	tags := s.store.Tags()
	out := make([]core.TagColor, 0, len(tags))
	for _, name := range tags {
		color, ok := colors[name]
		if !ok {
			color = core.FallbackTagColor
		}
		out = append(out, core.TagColor{Name: name, Color: color})
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	name := sanitizeInput(req.Name)
	if name == "" {
		BadRequestError("tag name is required").Write(w)
		return
	}
	color, err := s.store.AddTag(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(core.TagColor{Name: name, Color: color}).Write(w)
}

func (s *Server) handleEditTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	newName := sanitizeInput(req.Name)
	if newName == "" {
		BadRequestError("tag name is required").Write(w)
		return
	}
	ok, err := s.store.EditTag(r.PathValue("name"), newName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		NotFoundError("tag not found").Write(w)
		return
	}
	NewJSONResponse().Data(core.TagColor{Name: newName, Color: s.store.TagColor(newName)}).Write(w)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.store.DeleteTag(name) {
		NotFoundError("tag not found").Write(w)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Tag deleted", log.FieldTag, name)
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleTagColor(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	NewJSONResponse().Data(core.TagColor{Name: name, Color: s.store.TagColor(name)}).Write(w)
}
