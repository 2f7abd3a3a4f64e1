package service

import (
	"context"
	"fmt"

	"resto-collect/internal/auth"
	"resto-collect/internal/model"
	"resto-collect/internal/session"

	"github.com/rs/zerolog"
)

// Authenticator registers and verifies password accounts.
type Authenticator interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.Client, error)
	Authenticate(ctx context.Context, email, credential string) (*model.Client, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Generate(client *model.Client) (string, error)
}

// accountService implements AccountService.
type accountService struct {
	authenticator Authenticator
	tokens        TokenIssuer
	sessions      *session.Manager
	logger        zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(authenticator Authenticator, tokens TokenIssuer, sessions *session.Manager, logger zerolog.Logger) AccountService {
	return &accountService{
		authenticator: authenticator,
		tokens:        tokens,
		sessions:      sessions,
		logger:        logger.With().Str("service", "account").Logger(),
	}
}

var _ TokenIssuer = (*auth.JWTManager)(nil)
var _ Authenticator = (*auth.PasswordAuthenticator)(nil)

// Register creates an account and signs it in.
func (s *accountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	client, err := s.authenticator.Register(ctx, *req)
	if err != nil {
		if _, ok := model.KindOf(err); !ok {
			s.logger.Error().Err(err).Msg("registration failed")
		}
		return nil, err
	}

	return s.signIn(ctx, client)
}

// Login checks credentials, issues a token and opens the session.
func (s *accountService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	client, err := s.authenticator.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if _, ok := model.KindOf(err); !ok {
			s.logger.Error().Err(err).Msg("login failed")
		}
		return nil, err
	}

	return s.signIn(ctx, client)
}

// Logout ends the session of identity.
func (s *accountService) Logout(ctx context.Context, identity model.Identity) {
	s.sessions.End(identity.UserID)
	s.logger.Info().Str("user_id", identity.UserID.String()).Msg("client signed out")
}

func (s *accountService) signIn(ctx context.Context, client *model.Client) (*model.AuthResponse, error) {
	token, err := s.tokens.Generate(client)
	if err != nil {
		s.logger.Error().Err(err).Str("client_id", client.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	sess := s.sessions.Acquire(ctx, model.Identity{
		UserID: client.ID,
		Email:  client.Email,
		Role:   client.Role,
	})
	client.Tokens = sess.Ledger.CurrentBalance()

	s.logger.Info().
		Str("client_id", client.ID.String()).
		Str("role", string(client.Role)).
		Msg("client signed in")

	return &model.AuthResponse{Token: token, Client: *client}, nil
}
