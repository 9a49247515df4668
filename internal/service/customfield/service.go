package customfield

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/contact-manager/internal/domain"
)

// Service implements custom field registry logic. It is safe for concurrent
// use if the underlying repository is.
type Service struct {
	repo Repository
}

// NewService creates a custom field service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Input holds the client-supplied fields for create and update.
type Input struct {
	Name      string `json:"name"`
	FieldType string `json:"fieldType"`
}

// List returns all definitions ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.CustomField, error) {
	return s.repo.List(ctx)
}

// Get returns a single definition.
func (s *Service) Get(ctx context.Context, id string) (*domain.CustomField, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the type and persists a new definition.
func (s *Service) Create(ctx context.Context, in Input) (*domain.CustomField, error) {
	ft, ok := domain.ParseFieldType(in.FieldType)
	if !ok {
		return nil, ErrInvalidType
	}
	f := &domain.CustomField{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		FieldType: ft,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Update renames and/or retypes a definition. The type is validated before
// the lookup, so an invalid type wins over a missing id.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.CustomField, error) {
	ft, ok := domain.ParseFieldType(in.FieldType)
	if !ok {
		return nil, ErrInvalidType
	}
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Name = strings.TrimSpace(in.Name)
	f.FieldType = ft
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes a definition and cascades its values.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
