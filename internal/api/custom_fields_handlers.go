package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/contact-manager/internal/pkg/httputil"
	"github.com/ignite/contact-manager/internal/service/customfield"
)

// ListCustomFields returns every definition ordered by name.
// GET /customfields
func (h *Handlers) ListCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.fields.List(r.Context())
	if err != nil {
		httputil.InternalError(w, r, err)
		return
	}
	httputil.OK(w, fields)
}

// GetCustomField returns one definition.
// GET /customfields/{id}
func (h *Handlers) GetCustomField(w http.ResponseWriter, r *http.Request) {
	f, err := h.fields.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFieldError(w, r, err)
		return
	}
	httputil.OK(w, f)
}

// CreateCustomField registers a definition.
// POST /customfields
func (h *Handlers) CreateCustomField(w http.ResponseWriter, r *http.Request) {
	var in customfield.Input
	if !httputil.Decode(w, r, &in) {
		return
	}
	f, err := h.fields.Create(r.Context(), in)
	if err != nil {
		writeFieldError(w, r, err)
		return
	}
	w.Header().Set("Location", "/customfields/"+f.ID)
	httputil.Created(w, f)
}

// UpdateCustomField renames or retypes a definition.
// PUT /customfields/{id}
func (h *Handlers) UpdateCustomField(w http.ResponseWriter, r *http.Request) {
	var in customfield.Input
	if !httputil.Decode(w, r, &in) {
		return
	}
	f, err := h.fields.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeFieldError(w, r, err)
		return
	}
	httputil.OK(w, f)
}

// DeleteCustomField removes a definition and its values.
// DELETE /customfields/{id}
func (h *Handlers) DeleteCustomField(w http.ResponseWriter, r *http.Request) {
	if err := h.fields.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFieldError(w, r, err)
		return
	}
	httputil.NoContent(w)
}

func writeFieldError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, customfield.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, customfield.ErrInvalidType):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, r, err)
	}
}
