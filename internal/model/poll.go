package model

// PollOption is one selectable answer of a poll, with its current tally.
type PollOption struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is a member poll as returned by the portal. Tallying happens
// server-side; the client only renders counts and casts votes.
type Poll struct {
	ID               int          `json:"id"`
	Question         string       `json:"question"`
	Options          []PollOption `json:"options"`
	TotalVotes       int          `json:"total_votes"`
	HasVoted         bool         `json:"has_voted"`
	IsMultipleChoice bool         `json:"is_multiple_choice"`
	TargetDate       string       `json:"target_date,omitempty"`
	AuthorID         int          `json:"author_id"`
	AuthorName       string       `json:"author_name,omitempty"`
}
