package api

import (
	"context"

	"github.com/gugverein/portal/internal/model"
)

// Events fetches the association calendar.
func (c *Client) Events(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.Get(ctx, "/gug/v1/events", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent adds a new calendar entry.
func (c *Client) CreateEvent(ctx context.Context, ev model.Event) error {
	return c.Post(ctx, "/gug/v1/events", ev, nil)
}
