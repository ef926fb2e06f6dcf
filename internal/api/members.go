package api

import (
	"context"
	"fmt"

	"github.com/gugverein/portal/internal/model"
)

// Members fetches the member directory.
func (c *Client) Members(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	if err := c.Get(ctx, "/gug/v1/members", &members); err != nil {
		return nil, err
	}
	return members, nil
}

// CreateMember adds a directory entry. Restricted server-side to
// administrators.
func (c *Client) CreateMember(ctx context.Context, m model.Member) error {
	return c.Post(ctx, "/gug/v1/members", m, nil)
}

// Member fetches a single directory entry.
func (c *Client) Member(ctx context.Context, id int) (*model.Member, error) {
	var m model.Member
	if err := c.Get(ctx, fmt.Sprintf("/gug/v1/members/%d", id), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMember updates a directory entry.
func (c *Client) UpdateMember(ctx context.Context, id int, m model.Member) error {
	return c.Post(ctx, fmt.Sprintf("/gug/v1/members/%d", id), m, nil)
}
