package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/dogtv-dashboard/api"
	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
)

// Messages shown on the login banner when the API gives nothing better
const (
	LoginRejectedMessage   = "Falha no login. Tente novamente."
	LoginUnexpectedMessage = "Ocorreu um erro inesperado. Tente novamente mais tarde."
)

// Service talks to the authentication endpoints of the remote API.
type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Login validates creds and exchanges them for a credential token.
// Validation failures never reach the network.
func (s *Service) Login(ctx context.Context, creds Credentials) (string, error) {
	if err := creds.Validate(); err != nil {
		return "", err
	}
	creds.Email = strings.TrimSpace(creds.Email)

	var resp struct {
		Token string `json:"token"`
	}
	if err := s.client.Post(ctx, api.PathLogin, "", creds, &resp); err != nil {
		return "", errors.Wrapf(err, "[auth Login]")
	}
	if resp.Token == "" {
		return "", errors.Wrapf(errors.ErrEmptyToken, "[auth Login]")
	}
	return resp.Token, nil
}

// Verify asks the API who token belongs to.
func (s *Service) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, errors.Wrapf(errors.ErrEmptyToken, "[auth Verify]")
	}
	var id Identity
	if err := s.client.Get(ctx, api.PathVerify, token, &id); err != nil {
		return Identity{}, errors.Wrapf(err, "[auth Verify]")
	}
	if id.ID == "" {
		return Identity{}, errors.Wrapf(errors.ErrInvalidToken, "[auth Verify] no identity in response")
	}
	return id, nil
}

// LoginErrorMessage maps a failed Login to the single banner message shown to the operator.
// Validation errors are reported per field and map to "".
func LoginErrorMessage(err error) string {
	if err == nil || errors.Is(err, errors.ErrValidation) {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Field("error", "message"); msg != "" {
			return msg
		}
		return LoginRejectedMessage
	}
	if errors.Is(err, errors.ErrEmptyToken) {
		return LoginRejectedMessage
	}
	return LoginUnexpectedMessage
}
