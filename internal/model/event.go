package model

// Event is a calendar entry for the association.
type Event struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Location    string `json:"location,omitempty"`
	AuthorID    int    `json:"author_id"`
	AuthorName  string `json:"author_name,omitempty"`
}
