package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/record"
)

type docStore interface {
	Get(ctx context.Context, collection, id string) (docstore.Record, error)
	Put(ctx context.Context, collection, id string, fields docstore.Record) error
}

type bazaarGetter interface {
	Get(ctx context.Context, id string) (domain.Bazaar, error)
}

// Service resolves authenticated identities to actors and manages the role
// records behind them.
type Service struct {
	store   docStore
	bazaars bazaarGetter
	log     *slog.Logger
}

// NewService creates a new Profile service.
func NewService(log *slog.Logger, store docStore, bazaars bazaarGetter) *Service {
	return &Service{
		store:   store,
		bazaars: bazaars,
		log:     log.With("service", "profile"),
	}
}

// Resolve returns the actor for an identity. Without a profile record the
// identity acts as a donor.
func (s *Service) Resolve(ctx context.Context, id domain.Identity) (domain.Actor, error) {
	if strings.TrimSpace(id.UserID) == "" {
		return domain.Actor{}, domain.ErrUnauthorized
	}

	rec, err := s.store.Get(ctx, record.Profiles, id.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DonorActor(id), nil
	}
	if err != nil {
		return domain.Actor{}, fmt.Errorf("get profile %s: %w", id.UserID, err)
	}

	p, err := record.ProfileFromRecord(rec)
	if err != nil {
		return domain.Actor{}, err
	}
	if p.Role == domain.RoleBazaarAdmin && p.BazaarID == nil {
		s.log.WarnContext(ctx, "bazaar admin profile without bazaar", slog.String("user_id", id.UserID))
	}

	email := id.Email
	if email == "" {
		email = p.Email
	}
	return domain.Actor{ID: id.UserID, Email: email, Role: p.Role, BazaarID: p.BazaarID}, nil
}

// AssignInput sets the role of a user.
type AssignInput struct {
	UserID   string
	Email    string
	Role     string
	BazaarID *string
}

// Validate checks all fields and collects all errors.
func (i AssignInput) Validate() error {
	var errs []domain.FieldError
	if strings.TrimSpace(i.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	role, err := domain.ParseRole(strings.TrimSpace(i.Role))
	if err != nil {
		errs = append(errs, domain.FieldError{Field: "role", Message: "must be donor, admin or bazaar-admin"})
	}
	if role == domain.RoleBazaarAdmin && (i.BazaarID == nil || strings.TrimSpace(*i.BazaarID) == "") {
		errs = append(errs, domain.FieldError{Field: "bazaar_id", Message: "required for bazaar-admin"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Assign writes the profile record of a user. Only bazaar admins keep a
// bazaar reference, and it must point to an existing bazaar.
func (s *Service) Assign(ctx context.Context, input AssignInput) (domain.Profile, error) {
	if err := input.Validate(); err != nil {
		return domain.Profile{}, err
	}

	role, _ := domain.ParseRole(strings.TrimSpace(input.Role))
	p := domain.Profile{
		UserID: strings.TrimSpace(input.UserID),
		Email:  strings.TrimSpace(input.Email),
		Role:   role,
	}
	if role == domain.RoleBazaarAdmin {
		b, err := s.bazaars.Get(ctx, strings.TrimSpace(*input.BazaarID))
		if err != nil {
			return domain.Profile{}, fmt.Errorf("assign %s: %w", p.UserID, err)
		}
		p.BazaarID = &b.ID
	}

	if err := s.store.Put(ctx, record.Profiles, p.UserID, record.ProfileToRecord(p)); err != nil {
		return domain.Profile{}, fmt.Errorf("put profile %s: %w", p.UserID, err)
	}

	s.log.InfoContext(ctx, "profile assigned",
		slog.String("user_id", p.UserID),
		slog.String("role", p.Role.String()),
	)
	return p, nil
}
