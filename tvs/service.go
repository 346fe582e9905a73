package tvs

import (
	"context"

	"github.com/jrsteele09/dogtv-dashboard/api"
	"github.com/jrsteele09/dogtv-dashboard/internal/errors"
)

// FetchFailedMessage is shown in place of the list when the API gives no message.
const FetchFailedMessage = "Não foi possível carregar os dados."

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// List fetches every TV group with its customers. Callers fetch once per view activation.
func (s *Service) List(ctx context.Context, token string) ([]TvGroup, error) {
	if token == "" {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "[tvs List]")
	}
	var groups []TvGroup
	if err := s.client.Get(ctx, api.PathTvsCustomers, token, &groups); err != nil {
		return nil, errors.Wrapf(err, "[tvs List]")
	}
	for i := range groups {
		if groups[i].Customers == nil {
			groups[i].Customers = []Customer{}
		}
	}
	return groups, nil
}

// FetchErrorMessage maps a failed List to the message rendered in place of the list.
func FetchErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.Field("message", "error"); msg != "" {
			return msg
		}
	}
	return FetchFailedMessage
}
