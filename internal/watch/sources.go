package watch

import (
	"context"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/store"
)

// ChatSource adapts the portal chat endpoint to the FeedSource contract.
type ChatSource struct {
	client *api.Client
}

// NewChatSource creates a FeedSource over the chat feed.
func NewChatSource(client *api.Client) *ChatSource {
	return &ChatSource{client: client}
}

func (s *ChatSource) Fetch(ctx context.Context) ([]Item, error) {
	msgs, err := s.client.ChatMessages(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(msgs))
	for i, m := range msgs {
		items[i] = Item{
			ID:       m.ID,
			AuthorID: m.UserID,
			Author:   m.DisplayName,
			Body:     m.Message,
		}
	}
	return items, nil
}

// PollSource adapts the portal poll endpoint to the FeedSource contract.
// As a side effect of every successful non-empty fetch it replaces the
// local poll cache, so poll views stay current even when no notification
// fires.
type PollSource struct {
	client *api.Client
	local  *store.SQLiteStore
}

// NewPollSource creates a FeedSource over the polls feed.
func NewPollSource(client *api.Client, local *store.SQLiteStore) *PollSource {
	return &PollSource{client: client, local: local}
}

func (s *PollSource) Fetch(ctx context.Context) ([]Item, error) {
	polls, err := s.client.Polls(ctx)
	if err != nil {
		return nil, err
	}

	if len(polls) > 0 {
		if err := s.local.ReplacePolls(ctx, polls); err != nil {
			return nil, err
		}
	}

	return pollItems(polls), nil
}

func pollItems(polls []model.Poll) []Item {
	items := make([]Item, len(polls))
	for i, p := range polls {
		items[i] = Item{
			ID:       p.ID,
			AuthorID: p.AuthorID,
			Author:   p.AuthorName,
			Body:     p.Question,
		}
	}
	return items
}
