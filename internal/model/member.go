package model

// Member is an entry of the member directory.
type Member struct {
	ID          int      `json:"id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	MemberSince string   `json:"member_since,omitempty"`
}
