package model

import "encoding/json"

// Profile is the authenticated member's identity as reported by the portal.
type Profile struct {
	// ID is the member's numeric user id.
	ID int `json:"id"`

	// Email is the member's contact address.
	Email string `json:"email"`

	// DisplayName is the name shown to other members.
	DisplayName string `json:"display_name"`

	// Username is the login name.
	Username string `json:"username"`

	// Roles lists the member's portal roles (e.g. "administrator").
	Roles []string `json:"roles"`
}

// profileWire mirrors the two field-name variants the server emits
// depending on which backend handler produced the response.
type profileWire struct {
	ID          int      `json:"id"`
	UserEmail   string   `json:"user_email"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Name        string   `json:"name"`
	UserLogin   string   `json:"user_login"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
}

// UnmarshalJSON normalizes the alternate key spellings into one shape.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var w profileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	p.ID = w.ID
	p.Email = firstNonEmpty(w.UserEmail, w.Email)
	p.DisplayName = firstNonEmpty(w.DisplayName, w.Name)
	p.Username = firstNonEmpty(w.UserLogin, w.Username)
	p.Roles = w.Roles
	return nil
}

// HasRole reports whether the profile carries the given role.
func (p *Profile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
