package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agora/internal/database"
	"agora/internal/metrics"
	"agora/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown username
// or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService manages accounts and profiles.
type UserService struct {
	store database.Store
	cache *ProfileCache
	cost  int
	now   func() time.Time
}

// NewUserService creates a UserService.
func NewUserService(store database.Store, cache *ProfileCache) *UserService {
	return &UserService{store: store, cache: cache, cost: bcrypt.DefaultCost, now: utcNow}
}

// Register creates an account. Usernames are unique ignoring case and
// surrounding whitespace.
func (s *UserService) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(reg.Username)
	user := &models.User{
		ID:                 models.NewID(),
		Username:           username,
		NormalizedUsername: models.NormalizeUsername(username),
		PasswordHash:       string(hash),
		Email:              strings.TrimSpace(reg.Email),
		Roles:              []models.Role{models.RoleUser},
		Level:              1,
		CreatedAt:          s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	return user, nil
}

// Authenticate checks a username and password.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
		log.Debug().Str("user_id", user.ID).Msg("Login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// Subscriber resolves a user opening a realtime channel. Banned users may
// subscribe: a ban stops them acting, and moderation notices still reach them.
func (s *UserService) Subscriber(ctx context.Context, id string) (*models.User, error) {
	return knownUser(ctx, s.store, id)
}

// Get returns the public profile of a user.
func (s *UserService) Get(ctx context.Context, id string) (*PublicUser, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &PublicUser{
		ID:        user.ID,
		Username:  user.Username,
		Avatar:    user.Avatar,
		Level:     user.Level,
		Roles:     user.Roles,
		Banned:    user.IsBanned(),
		CreatedAt: user.CreatedAt,
	}
	if view.Gender, err = s.publicAttribute(ctx, models.LookupGender, user.Gender); err != nil {
		return nil, err
	}
	if view.Sexuality, err = s.publicAttribute(ctx, models.LookupSexuality, user.Sexuality); err != nil {
		return nil, err
	}
	if view.Openness, err = s.publicAttribute(ctx, models.LookupOpenness, user.Openness); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *UserService) publicAttribute(ctx context.Context, kind models.LookupKind, attr *models.ProfileAttribute) (*models.Lookup, error) {
	if attr == nil || attr.Private {
		return nil, nil
	}
	lookup, err := s.store.GetLookup(ctx, kind, attr.LookupID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return lookup, err
}

// UpdateProfile changes the user's avatar and profile attributes. Each
// attribute must reference an entry of its lookup collection.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	attrs := []struct {
		kind models.LookupKind
		in   *models.ProfileAttribute
		out  **models.ProfileAttribute
	}{
		{models.LookupGender, upd.Gender, &user.Gender},
		{models.LookupSexuality, upd.Sexuality, &user.Sexuality},
		{models.LookupOpenness, upd.Openness, &user.Openness},
	}
	for _, a := range attrs {
		if a.in == nil {
			continue
		}
		if _, err := s.store.GetLookup(ctx, a.kind, a.in.LookupID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown %s %s", models.ErrInvalid, a.kind, a.in.LookupID)
			}
			return nil, err
		}
		attr := *a.in
		*a.out = &attr
	}
	if upd.Avatar != nil {
		user.Avatar = strings.TrimSpace(*upd.Avatar)
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Invalidate(userID)

	return user, nil
}
