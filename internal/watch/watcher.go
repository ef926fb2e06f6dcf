package watch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/store"
)

// Item is one entry of a watched feed, reduced to the fields the diffing
// and notification logic needs. IDs are server-assigned and unique
// within a feed; an absent id counts as 0.
type Item struct {
	ID       int
	AuthorID int
	Author   string
	Body     string
}

// FeedSource fetches the complete current item list of one feed. The
// portal has no delta endpoint, so every call returns the full list;
// keeping this behind an interface lets an incremental backend replace
// it later without touching the diffing algorithm.
type FeedSource interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// TrackingStore persists the per-feed high-water marks.
type TrackingStore interface {
	GetNumber(ctx context.Context, key string) int64
	SetNumber(ctx context.Context, key string, value int64) error
}

// PreferenceStore supplies the user's notification toggles.
type PreferenceStore interface {
	GetPreferences(ctx context.Context) model.Preferences
}

// NotificationMsg is a tea.Msg carrying one user-facing notification
// raised by a cycle. At most one is emitted per feed per cycle.
type NotificationMsg struct {
	Feed    string
	Message string
}

// PollsRefreshedMsg is a tea.Msg signaling that the local poll cache
// has been replaced with a fresh server list.
type PollsRefreshedMsg struct{}

// DefaultInterval is the cycle period when none is configured.
const DefaultInterval = 5 * time.Second

// Preview truncation limits, in characters.
const (
	chatPreviewLimit = 80
	pollPreviewLimit = 90
)

// Watcher periodically re-fetches the watched feeds, diffs them against
// the persisted watermarks, and emits at most one notification per feed
// per cycle. It runs only while a session is present and is stopped by
// session invalidation; feed failures are swallowed and never stop it.
type Watcher struct {
	chat     FeedSource
	polls    FeedSource
	tracking TrackingStore
	prefs    PreferenceStore
	selfID   func() int
	interval time.Duration

	resultCh chan tea.Msg

	mu      sync.Mutex
	running bool
	cycling bool
	stopSeq int
	stopCh  chan struct{}
	cancel  context.CancelFunc
}

// New creates a Watcher over the given feeds and stores. selfID reports
// the current member's user id so their own chat messages never
// self-notify. A non-positive interval falls back to DefaultInterval.
func New(
	chat FeedSource,
	polls FeedSource,
	tracking TrackingStore,
	prefs PreferenceStore,
	selfID func() int,
	interval time.Duration,
) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		chat:     chat,
		polls:    polls,
		tracking: tracking,
		prefs:    prefs,
		selfID:   selfID,
		interval: interval,
		resultCh: make(chan tea.Msg, 16),
	}
}

// Start launches the cycle timer and returns a tea.Cmd subscribed to
// the watcher's messages. Starting an already-running watcher is a
// no-op that just renews the subscription, so exactly one timer is
// alive per session.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return w.waitForResult()
	}
	w.running = true
	w.stopCh = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	stopCh := w.stopCh
	w.mu.Unlock()

	go w.run(ctx, stopCh)

	return w.waitForResult()
}

// Stop halts the timer; no cycle starts after Stop returns and any
// in-flight fetches are cancelled. Idempotent and safe to call from an
// invalidation subscriber.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopSeq++
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.cancel()
}

// Running reports whether the cycle timer is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// WaitForNextResult returns a tea.Cmd that waits for the next watcher
// message. Call it after processing one to keep listening.
func (w *Watcher) WaitForNextResult() tea.Cmd {
	return w.waitForResult()
}

func (w *Watcher) run(ctx context.Context, stopCh chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Cycle(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			w.Cycle(ctx)
		}
	}
}

// Cycle performs one fetch-diff-notify pass over both feeds. Feeds are
// processed sequentially, chat first, and a failure in one never aborts
// the other. A tick arriving while the previous cycle is still running
// is dropped rather than interleaved.
func (w *Watcher) Cycle(ctx context.Context) {
	w.mu.Lock()
	if w.cycling {
		w.mu.Unlock()
		return
	}
	w.cycling = true
	seq := w.stopSeq
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.cycling = false
		w.mu.Unlock()
	}()

	prefs := w.prefs.GetPreferences(ctx)

	w.processFeed(ctx, feedSpec{
		name:        "chat",
		trackingKey: store.KeyLastSeenChat,
		source:      w.chat,
		notify:      w.chatNotification,
	}, prefs.Chat)

	// The chat fetch may have invalidated the session; in that case the
	// poll fetch for this cycle is skipped.
	if ctx.Err() != nil || w.stoppedSince(seq) {
		return
	}

	w.processFeed(ctx, feedSpec{
		name:        "polls",
		trackingKey: store.KeyLastSeenPolls,
		source:      w.polls,
		notify:      pollNotification,
		fetched: func() {
			w.send(PollsRefreshedMsg{})
		},
	}, prefs.Polls)
}

// feedSpec bundles the per-feed behavior the generic processing needs.
type feedSpec struct {
	name        string
	trackingKey string
	source      FeedSource

	// notify builds the feed's notification from the fetched items,
	// the previous watermark, and the cycle's max id. The bool is
	// false when no qualifying new item exists.
	notify func(items []Item, lastSeen, maxID int64, preview bool) (string, bool)

	// fetched, if set, runs after every successful non-empty fetch,
	// independent of the notification outcome.
	fetched func()
}

func (w *Watcher) processFeed(ctx context.Context, f feedSpec, pref model.FeedPreference) {
	if !pref.Enabled {
		return
	}

	items, err := f.source.Fetch(ctx)
	if err != nil {
		// Background sync must never surface errors or stop the timer.
		log.Printf("watch: %s fetch failed: %v", f.name, err)
		return
	}
	if len(items) == 0 {
		return
	}

	if f.fetched != nil {
		f.fetched()
	}

	var maxID int64
	for _, it := range items {
		if int64(it.ID) > maxID {
			maxID = int64(it.ID)
		}
	}

	lastSeen := w.tracking.GetNumber(ctx, f.trackingKey)

	if lastSeen == 0 {
		// First run: baseline silently so historic items don't flood
		// the user.
		w.setWatermark(ctx, f.trackingKey, maxID)
		return
	}

	if maxID <= lastSeen {
		return
	}

	if msg, ok := f.notify(items, lastSeen, maxID, pref.PreviewEnabled); ok {
		w.send(NotificationMsg{Feed: f.name, Message: msg})
	}

	// The watermark advances even when nothing qualified for a
	// notification, so the same range is never re-evaluated.
	w.setWatermark(ctx, f.trackingKey, maxID)
}

// chatNotification picks the newest message in the gap that was written
// by someone else. A member's own messages never self-notify, and a gap
// of several messages collapses into a single notification.
func (w *Watcher) chatNotification(items []Item, lastSeen, maxID int64, preview bool) (string, bool) {
	self := w.selfID()

	var pick *Item
	for i := range items {
		it := &items[i]
		if int64(it.ID) <= lastSeen || it.AuthorID == self {
			continue
		}
		if pick == nil || it.ID > pick.ID {
			pick = it
		}
	}
	if pick == nil {
		return "", false
	}

	if preview {
		return excerpt(pick.Body, chatPreviewLimit), true
	}
	return fmt.Sprintf("New chat message from %s", pick.Author), true
}

// pollNotification considers only the newest poll, even when several
// were created since the last cycle.
func pollNotification(items []Item, lastSeen, maxID int64, preview bool) (string, bool) {
	for i := range items {
		if int64(items[i].ID) == maxID {
			if preview {
				return excerpt(items[i].Body, pollPreviewLimit), true
			}
			return "A new poll is available", true
		}
	}
	return "", false
}

// stoppedSince reports whether Stop was called after the cycle that
// recorded seq began.
func (w *Watcher) stoppedSince(seq int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopSeq != seq
}

func (w *Watcher) setWatermark(ctx context.Context, key string, value int64) {
	if err := w.tracking.SetNumber(ctx, key, value); err != nil {
		log.Printf("watch: persisting watermark %s: %v", key, err)
	}
}

// send delivers a message without blocking; the channel is buffered and
// a full buffer drops the message rather than stalling a cycle.
func (w *Watcher) send(msg tea.Msg) {
	select {
	case w.resultCh <- msg:
	default:
	}
}

func (w *Watcher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.resultCh
		if !ok {
			return nil
		}
		return msg
	}
}

// excerpt truncates s to limit characters, appending an ellipsis when
// anything was cut.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
