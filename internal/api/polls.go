package api

import (
	"context"
	"fmt"

	"github.com/gugverein/portal/internal/model"
)

// CreatePollRequest is the payload for creating a new poll.
type CreatePollRequest struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	IsMultipleChoice bool     `json:"is_multiple_choice"`
	TargetDate       string   `json:"target_date,omitempty"`
}

// Polls fetches all currently visible polls.
func (c *Client) Polls(ctx context.Context) ([]model.Poll, error) {
	var polls []model.Poll
	if err := c.Get(ctx, "/gug/v1/polls", &polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// CreatePoll creates a new poll.
func (c *Client) CreatePoll(ctx context.Context, req CreatePollRequest) error {
	return c.Post(ctx, "/gug/v1/polls", req, nil)
}

// DeletePoll removes a poll. The server enforces authorship/role checks.
func (c *Client) DeletePoll(ctx context.Context, id int) error {
	return c.Delete(ctx, fmt.Sprintf("/gug/v1/polls/%d", id))
}

// Vote casts a vote for one or more options of a poll. Tallying is
// entirely server-side.
func (c *Client) Vote(ctx context.Context, pollID int, optionIDs []int) error {
	body := struct {
		OptionIDs []int `json:"option_ids"`
	}{OptionIDs: optionIDs}
	return c.Post(ctx, fmt.Sprintf("/gug/v1/polls/%d/vote", pollID), body, nil)
}
