package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resto-collect/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// ClientStorage is the persistence the authenticator needs.
type ClientStorage interface {
	Create(ctx context.Context, client *model.Client) error
	GetByEmail(ctx context.Context, email string) (*model.Client, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage    ClientStorage
	chefEmails map[string]struct{}
	cost       int
	logger     zerolog.Logger
}

// NewPasswordAuthenticator creates an authenticator. Accounts registered with
// one of chefEmails get the chef role.
func NewPasswordAuthenticator(storage ClientStorage, chefEmails []string, logger zerolog.Logger) *PasswordAuthenticator {
	chefs := make(map[string]struct{}, len(chefEmails))
	for _, e := range chefEmails {
		if e = normalizeEmail(e); e != "" {
			chefs[e] = struct{}{}
		}
	}
	return &PasswordAuthenticator{
		storage:    storage,
		chefEmails: chefs,
		cost:       bcrypt.DefaultCost,
		logger:     logger.With().Str("component", "authenticator").Logger(),
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return model.ErrWeakPassword
	}
	return nil
}

// Register creates a new client account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, req model.RegisterRequest) (*model.Client, error) {
	email := normalizeEmail(req.Email)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	if email == "" || req.Password == "" || firstName == "" || lastName == "" {
		return nil, model.NewMissingField("Email, password, first name and last name are required")
	}

	if err := a.ValidateCredential(req.Password); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, model.ErrEmailTaken
	case err != nil && !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleClient
	if _, ok := a.chefEmails[email]; ok {
		role = model.RoleChef
	}

	client := &model.Client{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		Tokens:       0,
		CreatedAt:    time.Now().UTC(),
	}

	if err := a.storage.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	a.logger.Info().
		Str("client_id", client.ID.String()).
		Str("role", string(client.Role)).
		Msg("client registered")

	return client, nil
}

// Authenticate verifies the email and password, returning the client if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*model.Client, error) {
	email = normalizeEmail(email)
	if email == "" || credential == "" {
		return nil, model.NewMissingField("Email and password are required")
	}

	client, err := a.storage.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(credential)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return client, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
