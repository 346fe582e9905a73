package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jrsteele09/dogtv-dashboard/api"
	"github.com/jrsteele09/dogtv-dashboard/api/apifake"
	"github.com/jrsteele09/dogtv-dashboard/auth"
	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ana@dogtv.com.br"
	testPassword = "segredo123"
	testName     = "Ana Souza"
)

func setupService(t *testing.T) (*auth.Service, *apifake.FakeAPI) {
	t.Helper()

	fake := apifake.New()
	t.Cleanup(fake.Close)
	fake.AddAccount(apifake.Account{ID: "op-1", Name: testName, Email: testEmail, Password: testPassword})

	client, err := api.New(fake.URL())
	require.NoError(t, err)
	return auth.NewService(client), fake
}

func TestLogin_Success(t *testing.T) {
	svc, fake := setupService(t)

	token, err := svc.Login(context.Background(), auth.Credentials{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.EqualValues(t, 1, fake.LoginCalls.Load())

	id, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, auth.Identity{ID: "op-1", DisplayName: testName}, id)
}

func TestLogin_ValidationSkipsNetwork(t *testing.T) {
	svc, fake := setupService(t)

	_, err := svc.Login(context.Background(), auth.Credentials{Email: "not-an-email", Password: testPassword})
	require.True(t, errors.Is(err, errors.ErrValidation))
	require.Empty(t, auth.LoginErrorMessage(err))
	require.EqualValues(t, 0, fake.LoginCalls.Load())
}

func TestLogin_RejectedUsesAPIMessage(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Login(context.Background(), auth.Credentials{Email: testEmail, Password: "errada123"})
	require.Error(t, err)
	require.Equal(t, "Email ou senha inválidos", auth.LoginErrorMessage(err))
}

func TestLogin_NetworkErrorUsesFallback(t *testing.T) {
	svc, fake := setupService(t)
	fake.Close()

	_, err := svc.Login(context.Background(), auth.Credentials{Email: testEmail, Password: testPassword})
	require.Error(t, err)
	require.Equal(t, auth.LoginUnexpectedMessage, auth.LoginErrorMessage(err))
}

func TestLoginErrorMessage_APIWithoutPayload(t *testing.T) {
	err := errors.Wrapf(&api.Error{StatusCode: http.StatusInternalServerError}, "[test]")
	require.Equal(t, auth.LoginRejectedMessage, auth.LoginErrorMessage(err))
	require.Equal(t, auth.LoginRejectedMessage, auth.LoginErrorMessage(errors.ErrEmptyToken))
}

func TestVerify_Rejected(t *testing.T) {
	svc, fake := setupService(t)

	token := fake.IssueToken(testEmail)
	fake.Revoke(token)

	_, err := svc.Verify(context.Background(), token)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.True(t, apiErr.Unauthorized())

	_, err = svc.Verify(context.Background(), "")
	require.True(t, errors.Is(err, errors.ErrEmptyToken))
}
