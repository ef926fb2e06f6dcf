package model

// FeedPreference controls notifications for a single watched feed.
type FeedPreference struct {
	// Enabled suppresses the feed entirely when false: no fetch,
	// no watermark update, no notification.
	Enabled bool `json:"enabled"`

	// PreviewEnabled includes a content excerpt in the notification
	// instead of a generic message.
	PreviewEnabled bool `json:"preview_enabled"`
}

// Preferences holds the per-feed notification toggles chosen by the user.
type Preferences struct {
	Chat  FeedPreference `json:"chat"`
	Polls FeedPreference `json:"polls"`
}

// DefaultPreferences returns the all-enabled defaults used when nothing
// has been persisted yet or the persisted blob cannot be parsed.
func DefaultPreferences() Preferences {
	return Preferences{
		Chat:  FeedPreference{Enabled: true, PreviewEnabled: true},
		Polls: FeedPreference{Enabled: true, PreviewEnabled: true},
	}
}
