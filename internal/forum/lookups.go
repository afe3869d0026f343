package forum

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/database"
	"agora/internal/models"
)

// LookupService serves the shared lookup collections: genders, sexualities,
// openness levels, tags, post types and awards.
type LookupService struct {
	store database.Store
}

// NewLookupService creates a LookupService.
func NewLookupService(store database.Store) *LookupService {
	return &LookupService{store: store}
}

// List returns every entry of kind.
func (s *LookupService) List(ctx context.Context, kind models.LookupKind) ([]models.Lookup, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown lookup kind %q", models.ErrInvalid, kind)
	}
	lookups, err := s.store.ListLookups(ctx, kind)
	if err != nil {
		return nil, err
	}
	if lookups == nil {
		lookups = []models.Lookup{}
	}
	return lookups, nil
}

// Get returns one entry of kind.
func (s *LookupService) Get(ctx context.Context, kind models.LookupKind, id string) (*models.Lookup, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown lookup kind %q", models.ErrInvalid, kind)
	}
	return s.store.GetLookup(ctx, kind, id)
}

// Create adds an entry to a collection. Only admins may do this.
func (s *LookupService) Create(ctx context.Context, actorID string, lookup models.Lookup) (*models.Lookup, error) {
	actor, err := activeUser(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.HasRole(models.RoleAdmin) {
		return nil, fmt.Errorf("%w: only admins may edit lookups", models.ErrForbidden)
	}
	if !lookup.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown lookup kind %q", models.ErrInvalid, lookup.Kind)
	}
	lookup.Name = strings.TrimSpace(lookup.Name)
	if lookup.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalid)
	}
	if lookup.ID == "" {
		lookup.ID = models.NewID()
	}

	if err := s.store.CreateLookup(ctx, &lookup); err != nil {
		return nil, err
	}
	return &lookup, nil
}
