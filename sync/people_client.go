// ABOUTME: Google People API client for contacts sync
// ABOUTME: Wraps the People service behind the small paging interface the importer uses
package sync

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

const personFields = "names,emailAddresses,phoneNumbers,organizations"

// PeopleSource returns one page of the user's connections.
type PeopleSource interface {
	ListConnections(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error)
}

type peopleClient struct {
	service *people.Service
}

// NewPeopleClient creates a People API source authenticated with token.
func NewPeopleClient(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (PeopleSource, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	service, err := people.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}
	return &peopleClient{service: service}, nil
}

func (p *peopleClient) ListConnections(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error) {
	call := p.service.People.Connections.List("people/me").
		PageSize(1000).
		PersonFields(personFields).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}
