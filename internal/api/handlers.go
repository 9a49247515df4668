package api

import (
	"github.com/ignite/contact-manager/internal/service/contact"
	"github.com/ignite/contact-manager/internal/service/customfield"
	"github.com/ignite/contact-manager/internal/service/merge"
)

// Handlers holds the HTTP handlers for contacts, custom fields and merges.
type Handlers struct {
	contacts *contact.Service
	fields   *customfield.Service
	merger   *merge.Engine
}

// NewHandlers creates the handler set.
func NewHandlers(contacts *contact.Service, fields *customfield.Service, merger *merge.Engine) *Handlers {
	return &Handlers{contacts: contacts, fields: fields, merger: merger}
}
