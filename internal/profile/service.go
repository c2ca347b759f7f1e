package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/girishmungarach/doneby-platform-sub001/internal/auth"
	"github.com/girishmungarach/doneby-platform-sub001/internal/profile/secrets"
	id "github.com/girishmungarach/doneby-platform-sub001/pkg/domain"
	dErrors "github.com/girishmungarach/doneby-platform-sub001/pkg/domain-errors"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/email"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/platform/sentinel"
	"github.com/girishmungarach/doneby-platform-sub001/pkg/requestcontext"
)

const tokenTTL = 24 * time.Hour

// Service manages profile registration and authentication.
type Service struct {
	store  Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a profile Service.
func New(store Store, tokens *auth.TokenService, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	s := &Service{store: store, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates a profile. When no name is supplied one is derived from
// the email address.
func (s *Service) Register(ctx context.Context, address, name, password string) (Profile, error) {
	address = strings.TrimSpace(address)
	if !govalidator.IsEmail(address) {
		return Profile{}, dErrors.New(dErrors.CodeInvalidInput, "a valid email address is required")
	}
	hash, err := secrets.Hash(password)
	if err != nil {
		return Profile{}, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = email.DeriveDisplayName(address)
	}

	now := requestcontext.Now(ctx)
	p := Profile{
		ID:           id.NewProfileID(),
		Email:        strings.ToLower(address),
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateIfEmailAvailable(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Profile{}, dErrors.New(dErrors.CodeConflict, "email address is already registered")
		}
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "register profile")
	}

	s.logger.InfoContext(ctx, "profile registered", "profile_id", p.ID.String())
	return p.Public(), nil
}

// Authenticate verifies credentials and issues a session token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, address, password string) (Profile, string, error) {
	p, err := s.store.FindByEmail(ctx, strings.TrimSpace(address))
	if errors.Is(err, sentinel.ErrNotFound) {
		return Profile{}, "", dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "authenticate profile")
	}

	if err := secrets.Verify(password, p.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return Profile{}, "", err
		}
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "authenticate profile")
	}

	token, err := s.tokens.Generate(p.ID, tokenTTL)
	if err != nil {
		return Profile{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "issue session token")
	}
	return p.Public(), token, nil
}

// Get returns the profile by id, without credential material.
func (s *Service) Get(ctx context.Context, profileID id.ProfileID) (Profile, error) {
	p, err := s.store.FindByID(ctx, profileID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Profile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "get profile")
	}
	return p.Public(), nil
}

// UpdateHeadline sets the profile's headline.
func (s *Service) UpdateHeadline(ctx context.Context, profileID id.ProfileID, headline string) (Profile, error) {
	p, err := s.store.FindByID(ctx, profileID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Profile{}, dErrors.New(dErrors.CodeNotFound, "profile not found")
	}
	if err != nil {
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "get profile")
	}

	p.Headline = strings.TrimSpace(headline)
	p.UpdatedAt = requestcontext.Now(ctx)

	p, err = s.store.Update(ctx, p)
	if err != nil {
		return Profile{}, dErrors.Wrap(err, dErrors.CodeInternal, "update profile")
	}
	return p.Public(), nil
}
