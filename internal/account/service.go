package account

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JKPrasad01/FoodAppFrontend/internal/backend"
	"github.com/JKPrasad01/FoodAppFrontend/internal/session"
	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/validate"
)

type accountBackend interface {
	Register(ctx context.Context, req backend.RegisterRequest) error
	UpdateUser(ctx context.Context, userID int64, update backend.UserUpdate) (*backend.UserRecord, error)
}

type identityStore interface {
	Identity() *session.Identity
	UpdateIdentity(ctx context.Context, rec backend.UserRecord) (*session.Identity, error)
}

// RegisterInput is the signup form.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=64"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ProfileUpdate is the profile form. Nil optional fields keep the stored
// value.
type ProfileUpdate struct {
	Username        string  `json:"username" validate:"required,min=3,max=64"`
	Email           string  `json:"email" validate:"required,email"`
	ContactNumber   string  `json:"contactNumber" validate:"omitempty,numeric,len=10"`
	Address         *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Bio             *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	ProfileImageRef *string `json:"profileImageRef,omitempty"`
}

// Service handles signup and profile changes.
type Service interface {
	Register(ctx context.Context, input RegisterInput) error
	UpdateProfile(ctx context.Context, input ProfileUpdate) (*session.Identity, error)
}

type service struct {
	backend  accountBackend
	sessions identityStore
	logg     *logger.Logger
}

func NewService(be accountBackend, sessions identityStore, logg *logger.Logger) (Service, error) {
	if be == nil {
		return nil, fmt.Errorf("account backend required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: be, sessions: sessions, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) error {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validate.Struct(&input); err != nil {
		return err
	}

	err := s.backend.Register(ctx, backend.RegisterRequest{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "registration rejected")
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "username", input.Username), "account registered")
	return nil
}

// UpdateProfile sends the change to the backend and replaces the session
// identity with whatever the backend returns.
func (s *service) UpdateProfile(ctx context.Context, input ProfileUpdate) (*session.Identity, error) {
	current := s.sessions.Identity()
	if current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required")
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.ContactNumber = strings.TrimSpace(input.ContactNumber)
	if err := validate.Struct(&input); err != nil {
		return nil, err
	}

	update := backend.UserUpdate{
		Username:    input.Username,
		UserEmail:   input.Email,
		Address:     input.Address,
		Bio:         input.Bio,
		UserProfile: input.ProfileImageRef,
	}
	if input.ContactNumber != "" {
		contact, err := strconv.ParseInt(input.ContactNumber, 10, 64)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "contactNumber must contain digits only")
		}
		update.ContactNumber = &contact
	}

	ctx = s.logg.WithUserID(ctx, current.UserID)
	rec, err := s.backend.UpdateUser(ctx, current.UserID, update)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "profile update rejected")
		return nil, err
	}
	return s.sessions.UpdateIdentity(ctx, *rec)
}
