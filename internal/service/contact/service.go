package contact

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/contact-manager/internal/domain"
)

// Page size bounds for List.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Service implements contact business logic. All public methods are safe for
// concurrent use if the underlying repository is concurrency-safe.
type Service struct {
	repo   Repository
	fields FieldLookup
}

// NewService creates a contact service. fields resolves the declared type of
// each custom field a client writes a value for.
func NewService(repo Repository, fields FieldLookup) *Service {
	return &Service{repo: repo, fields: fields}
}

// FieldValueInput is a client-supplied custom field value. Only the slot
// matching the field's declared type is used.
type FieldValueInput struct {
	CustomFieldID string  `json:"customFieldId"`
	StringValue   *string `json:"stringValue,omitempty"`
	IntValue      *int    `json:"intValue,omitempty"`
	BoolValue     *bool   `json:"boolValue,omitempty"`
}

// CreateInput holds the fields for creating a contact.
type CreateInput struct {
	FirstName         string            `json:"firstName"`
	LastName          string            `json:"lastName"`
	Email             string            `json:"email"`
	Phone             *string           `json:"phone"`
	CustomFieldValues []FieldValueInput `json:"customFieldValues"`
}

// UpdateInput holds the mutable contact fields. A nil CustomFieldValues
// leaves stored values untouched; a non-nil (even empty) list replaces them.
type UpdateInput struct {
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Phone             *string            `json:"phone"`
	CustomFieldValues *[]FieldValueInput `json:"customFieldValues"`
}

// ListQuery is the caller's view of a list request before clamping.
type ListQuery struct {
	Page      int
	PageSize  int
	FirstName string
	LastName  string
	Email     string
	SortBy    string
	SortOrder string
}

// Page is one page of a contact listing.
type Page struct {
	Items      []domain.Contact `json:"items"`
	TotalCount int              `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
}

// ParseSortField maps a case-insensitive column name to a SortField,
// defaulting to created-at.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "firstname":
		return SortByFirstName
	case "lastname":
		return SortByLastName
	case "email":
		return SortByEmail
	case "updatedat":
		return SortByUpdatedAt
	}
	return SortByCreatedAt
}

// Get returns a single contact.
func (s *Service) Get(ctx context.Context, id string) (*domain.Contact, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered, sorted page of contacts. Page is raised to 1 and
// page size is clamped to [1, MaxPageSize]. Pages past the end are empty.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// Keeps (page-1)*size in range; such a page is past the end anyway.
	if page > math.MaxInt/size {
		page = math.MaxInt / size
	}

	f := ListFilter{
		SortBy: ParseSortField(q.SortBy),
		Desc:   q.SortOrder == "" || strings.EqualFold(q.SortOrder, "desc"),
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if !domain.IsBlank(q.FirstName) {
		f.FirstName = q.FirstName
	}
	if !domain.IsBlank(q.LastName) {
		f.LastName = q.LastName
	}
	if !domain.IsBlank(q.Email) {
		f.Email = q.Email
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Contact{}
	}
	return &Page{Items: items, TotalCount: total, Page: page, PageSize: size}, nil
}

// Create validates and persists a new contact. The email is normalized and
// must not collide with an existing contact.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Contact, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	values, err := s.resolveValues(ctx, in.CustomFieldValues)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Contact{
		ID:                uuid.New().String(),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             email,
		Phone:             trimPtr(in.Phone),
		CreatedAt:         now,
		UpdatedAt:         now,
		CustomFieldValues: values,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, c.ID)
}

// Update changes names and phone, and replaces the custom field value set
// when one is supplied. Email is not updatable.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Contact, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Phone = trimPtr(in.Phone)
	c.UpdatedAt = time.Now().UTC()

	replace := in.CustomFieldValues != nil
	if replace {
		values, err := s.resolveValues(ctx, *in.CustomFieldValues)
		if err != nil {
			return nil, err
		}
		c.CustomFieldValues = values
	}

	if err := s.repo.Update(ctx, c, replace); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a contact and its values.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// resolveValues turns client input into typed values. Inputs naming an
// unknown field, or lacking the slot for the field's type, are skipped. A
// repeated field id keeps its first position and its last value.
func (s *Service) resolveValues(ctx context.Context, inputs []FieldValueInput) ([]domain.CustomFieldValue, error) {
	if len(inputs) == 0 {
		return []domain.CustomFieldValue{}, nil
	}

	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.CustomFieldID)
	}
	defs, err := s.fields.LookupFields(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup custom fields: %w", err)
	}

	out := make([]domain.CustomFieldValue, 0, len(inputs))
	pos := make(map[string]int, len(inputs))
	for _, in := range inputs {
		def, ok := defs[in.CustomFieldID]
		if !ok {
			continue
		}
		v, ok := domain.ValueForType(def.FieldType, in.StringValue, in.IntValue, in.BoolValue)
		if !ok {
			continue
		}
		cv := domain.CustomFieldValue{CustomFieldID: def.ID, CustomFieldName: def.Name, Value: v}
		if i, seen := pos[def.ID]; seen {
			out[i] = cv
			continue
		}
		pos[def.ID] = len(out)
		out = append(out, cv)
	}
	return out, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
