package model

// ChatMessage is a single message in the association chat feed.
// Messages are immutable snapshots; the server assigns the id.
type ChatMessage struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
}
