package space

import (
	"context"
	"errors"
	"strings"

	"github.com/picstash/service/internal/apperr"
)

// Service contains business logic for space management.
type Service struct {
	repo *Repository
}

// NewService creates a new space Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create provisions a space for ownerID at the given level. Each user gets
// at most one space.
func (s *Service) Create(ctx context.Context, ownerID, name string, level Level) (*Space, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Params("space name must not be empty")
	}
	if len(name) > 128 {
		return nil, apperr.Params("space name too long")
	}

	sp := &Space{OwnerID: ownerID, Name: name, Level: level}
	sp.FillByLevel()

	created, err := s.repo.Create(ctx, sp)
	if errors.Is(err, ErrAlreadyExists) {
		return nil, apperr.Operation("user already has a space")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeOperation, "create space failed", err)
	}
	return created, nil
}

// Get returns a space by id, enforcing owner-or-admin visibility.
func (s *Service) Get(ctx context.Context, id, callerID string, isAdmin bool) (*Space, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("space not found")
	}
	if err != nil {
		return nil, err
	}
	if sp.OwnerID != callerID && !isAdmin {
		return nil, apperr.NoAuth("no permission for this space")
	}
	return sp, nil
}

// GetByOwner returns the caller's own space.
func (s *Service) GetByOwner(ctx context.Context, ownerID string) (*Space, error) {
	sp, err := s.repo.GetByOwner(ctx, ownerID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("space not found")
	}
	return sp, err
}
