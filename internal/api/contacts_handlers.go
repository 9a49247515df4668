package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/contact-manager/internal/pkg/httputil"
	"github.com/ignite/contact-manager/internal/service/contact"
)

// mergeRequest is the body of POST /contacts/merge. A missing or null list
// merges nothing.
type mergeRequest struct {
	ContactIDs []string `json:"contactIds"`
}

// ListContacts returns a filtered, sorted page of contacts.
// GET /contacts?page&pageSize&firstName&lastName&email&sortBy&sortOrder
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	size, err := queryInt(r, "pageSize", contact.DefaultPageSize)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	q := r.URL.Query()
	result, err := h.contacts.List(r.Context(), contact.ListQuery{
		Page:      page,
		PageSize:  size,
		FirstName: q.Get("firstName"),
		LastName:  q.Get("lastName"),
		Email:     q.Get("email"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	})
	if err != nil {
		httputil.InternalError(w, r, err)
		return
	}
	httputil.OK(w, result)
}

// GetContact returns one contact.
// GET /contacts/{id}
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.contacts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeContactError(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// CreateContact creates a contact.
// POST /contacts
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var in contact.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.contacts.Create(r.Context(), in)
	if err != nil {
		writeContactError(w, r, err)
		return
	}
	w.Header().Set("Location", "/contacts/"+c.ID)
	httputil.Created(w, c)
}

// UpdateContact replaces names, phone and optionally the custom field values.
// PUT /contacts/{id}
func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var in contact.UpdateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.contacts.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeContactError(w, r, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteContact removes a contact.
// DELETE /contacts/{id}
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeContactError(w, r, err)
		return
	}
	httputil.NoContent(w)
}

// MergeContacts collapses duplicate-email contacts among the given ids.
// POST /contacts/merge
func (h *Handlers) MergeContacts(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	result, err := h.merger.Merge(r.Context(), req.ContactIDs)
	if err != nil {
		httputil.InternalError(w, r, err)
		return
	}
	httputil.OK(w, result)
}

func writeContactError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contact.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, contact.ErrEmailExists):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, contact.ErrInvalidInput):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, r, err)
	}
}
