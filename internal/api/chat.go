package api

import (
	"context"

	"github.com/gugverein/portal/internal/model"
)

// ChatMessages fetches the full chat feed. The server has no delta
// endpoint; every call returns the complete visible history.
func (c *Client) ChatMessages(ctx context.Context) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	if err := c.Get(ctx, "/gug/v1/chat", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// PostChatMessage submits a new chat message.
func (c *Client) PostChatMessage(ctx context.Context, message string) error {
	body := struct {
		Message string `json:"message"`
	}{Message: message}
	return c.Post(ctx, "/gug/v1/chat", body, nil)
}
