package watch

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gugverein/portal/internal/api"
	"github.com/gugverein/portal/internal/model"
	"github.com/gugverein/portal/internal/store"
)

const testSelfID = 42

// fakeSource is an in-memory FeedSource with call counting and optional
// fetch hooks.
type fakeSource struct {
	mu      sync.Mutex
	items   []Item
	err     error
	calls   int
	onFetch func()
	block   chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context) ([]Item, error) {
	f.mu.Lock()
	f.calls++
	items, err := f.items, f.err
	hook, block := f.onFetch, f.block
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

func newTestWatcher(t *testing.T, chat, polls FeedSource) (*Watcher, *store.SQLiteStore) {
	t.Helper()

	local := newTestStore(t)
	w := New(chat, polls, local, local, func() int { return testSelfID }, time.Minute)
	return w, local
}

// drainMsgs collects everything the watcher has emitted so far.
func drainMsgs(w *Watcher) []tea.Msg {
	var msgs []tea.Msg
	for {
		select {
		case m := <-w.resultCh:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func notifications(msgs []tea.Msg) []NotificationMsg {
	var out []NotificationMsg
	for _, m := range msgs {
		if n, ok := m.(NotificationMsg); ok {
			out = append(out, n)
		}
	}
	return out
}

func pollRefreshes(msgs []tea.Msg) int {
	n := 0
	for _, m := range msgs {
		if _, ok := m.(PollsRefreshedMsg); ok {
			n++
		}
	}
	return n
}

func chatItem(id, author int, body string) Item {
	return Item{ID: id, AuthorID: author, Author: "Robin", Body: body}
}

func TestFirstCycleBaselinesWithoutNotifying(t *testing.T) {
	chat := &fakeSource{items: []Item{
		chatItem(1, 7, "hello"), chatItem(2, 7, "again"), chatItem(3, 8, "hi"),
	}}
	polls := &fakeSource{items: []Item{
		{ID: 1, AuthorID: 7, Body: "pizza or pasta?"},
		{ID: 2, AuthorID: 8, Body: "next meetup date?"},
	}}
	w, local := newTestWatcher(t, chat, polls)

	w.Cycle(context.Background())

	ctx := context.Background()
	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 3 {
		t.Fatalf("chat watermark = %d, want 3", got)
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenPolls); got != 2 {
		t.Fatalf("poll watermark = %d, want 2", got)
	}
	if n := notifications(drainMsgs(w)); len(n) != 0 {
		t.Fatalf("expected no notifications on first run, got %d", len(n))
	}
}

func TestGapCollapsesToSingleNotification(t *testing.T) {
	chat := &fakeSource{items: []Item{
		chatItem(6, 7, "first"), chatItem(7, 7, "second"), chatItem(8, 7, "third"),
	}}
	w, local := newTestWatcher(t, chat, &fakeSource{})

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenChat, 5); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	n := notifications(drainMsgs(w))
	if len(n) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(n))
	}
	if n[0].Feed != "chat" || n[0].Message != "third" {
		t.Fatalf("notification = %+v, want chat/third", n[0])
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 8 {
		t.Fatalf("chat watermark = %d, want 8", got)
	}
}

func TestOwnMessagesNeverNotify(t *testing.T) {
	chat := &fakeSource{items: []Item{
		chatItem(6, testSelfID, "mine"), chatItem(7, testSelfID, "also mine"),
	}}
	w, local := newTestWatcher(t, chat, &fakeSource{})

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenChat, 5); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	if n := notifications(drainMsgs(w)); len(n) != 0 {
		t.Fatalf("expected no notifications for own messages, got %d", len(n))
	}
	// The watermark still advances so the range is not re-evaluated.
	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 7 {
		t.Fatalf("chat watermark = %d, want 7", got)
	}
}

func TestDisabledFeedIsSkippedEntirely(t *testing.T) {
	chat := &fakeSource{items: []Item{chatItem(9, 7, "ignored")}}
	polls := &fakeSource{items: []Item{{ID: 4, AuthorID: 7, Body: "question?"}}}
	w, local := newTestWatcher(t, chat, polls)

	ctx := context.Background()
	prefs := model.DefaultPreferences()
	prefs.Chat.Enabled = false
	if err := local.SetPreferences(ctx, prefs); err != nil {
		t.Fatalf("seeding preferences: %v", err)
	}

	w.Cycle(ctx)

	if chat.callCount() != 0 {
		t.Fatalf("chat fetch called %d times, want 0", chat.callCount())
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 0 {
		t.Fatalf("chat watermark mutated to %d", got)
	}
	// The polls feed is processed normally in the same cycle.
	if polls.callCount() != 1 {
		t.Fatalf("polls fetch called %d times, want 1", polls.callCount())
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenPolls); got != 4 {
		t.Fatalf("poll watermark = %d, want 4", got)
	}
}

func TestChatPreviewTruncation(t *testing.T) {
	long := strings.Repeat("a", 50) + strings.Repeat("b", 50)
	ctx := context.Background()

	t.Run("preview enabled", func(t *testing.T) {
		chat := &fakeSource{items: []Item{chatItem(6, 7, long)}}
		w, local := newTestWatcher(t, chat, &fakeSource{})
		if err := local.SetNumber(ctx, store.KeyLastSeenChat, 5); err != nil {
			t.Fatalf("seeding watermark: %v", err)
		}

		w.Cycle(ctx)

		n := notifications(drainMsgs(w))
		if len(n) != 1 {
			t.Fatalf("expected one notification, got %d", len(n))
		}
		want := long[:80] + "…"
		if n[0].Message != want {
			t.Fatalf("preview = %q, want %q", n[0].Message, want)
		}
	})

	t.Run("preview disabled", func(t *testing.T) {
		chat := &fakeSource{items: []Item{chatItem(6, 7, long)}}
		w, local := newTestWatcher(t, chat, &fakeSource{})
		if err := local.SetNumber(ctx, store.KeyLastSeenChat, 5); err != nil {
			t.Fatalf("seeding watermark: %v", err)
		}
		prefs := model.DefaultPreferences()
		prefs.Chat.PreviewEnabled = false
		if err := local.SetPreferences(ctx, prefs); err != nil {
			t.Fatalf("seeding preferences: %v", err)
		}

		w.Cycle(ctx)

		n := notifications(drainMsgs(w))
		if len(n) != 1 {
			t.Fatalf("expected one notification, got %d", len(n))
		}
		if n[0].Message != "New chat message from Robin" {
			t.Fatalf("generic notification = %q", n[0].Message)
		}
		if strings.Contains(n[0].Message, long[:10]) {
			t.Fatalf("generic notification leaked content: %q", n[0].Message)
		}
	})
}

func TestUnchangedFeedIsQuiet(t *testing.T) {
	chat := &fakeSource{items: []Item{chatItem(8, 7, "old news")}}
	w, local := newTestWatcher(t, chat, &fakeSource{})

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenChat, 8); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	if n := notifications(drainMsgs(w)); len(n) != 0 {
		t.Fatalf("expected no notifications, got %d", len(n))
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 8 {
		t.Fatalf("chat watermark = %d, want 8", got)
	}
}

func TestEmptyFetchLeavesStateUntouched(t *testing.T) {
	w, local := newTestWatcher(t, &fakeSource{}, &fakeSource{})

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenChat, 8); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 8 {
		t.Fatalf("chat watermark = %d, want 8", got)
	}
	if msgs := drainMsgs(w); len(msgs) != 0 {
		t.Fatalf("expected no messages for empty fetches, got %d", len(msgs))
	}
}

func TestFeedFailureDoesNotAbortOtherFeed(t *testing.T) {
	chat := &fakeSource{err: &api.ApiError{Message: "Error 500", Status: 500}}
	polls := &fakeSource{items: []Item{{ID: 3, AuthorID: 7, Body: "still here?"}}}
	w, local := newTestWatcher(t, chat, polls)

	ctx := context.Background()
	w.Cycle(ctx)

	if polls.callCount() != 1 {
		t.Fatalf("polls fetch called %d times, want 1", polls.callCount())
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenPolls); got != 3 {
		t.Fatalf("poll watermark = %d, want 3", got)
	}
	// First sighting of the poll feed baselines quietly.
	if n := notifications(drainMsgs(w)); len(n) != 0 {
		t.Fatalf("expected no notifications, got %d", len(n))
	}
}

func TestNewestPollOnlyNotifies(t *testing.T) {
	polls := &fakeSource{items: []Item{
		{ID: 4, AuthorID: 7, Body: "older question?"},
		{ID: 5, AuthorID: 7, Body: "middle question?"},
		{ID: 6, AuthorID: 7, Body: "newest question?"},
	}}
	w, local := newTestWatcher(t, &fakeSource{}, polls)

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenPolls, 3); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	n := notifications(drainMsgs(w))
	if len(n) != 1 {
		t.Fatalf("expected exactly one poll notification, got %d", len(n))
	}
	if n[0].Feed != "polls" || n[0].Message != "newest question?" {
		t.Fatalf("notification = %+v", n[0])
	}
	if got := local.GetNumber(ctx, store.KeyLastSeenPolls); got != 6 {
		t.Fatalf("poll watermark = %d, want 6", got)
	}
}

func TestPollRefreshFiresWithoutNotification(t *testing.T) {
	polls := &fakeSource{items: []Item{{ID: 2, AuthorID: 7, Body: "seen before"}}}
	w, local := newTestWatcher(t, &fakeSource{}, polls)

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenPolls, 2); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	msgs := drainMsgs(w)
	if got := pollRefreshes(msgs); got != 1 {
		t.Fatalf("poll refresh messages = %d, want 1", got)
	}
	if n := notifications(msgs); len(n) != 0 {
		t.Fatalf("expected no notifications, got %d", len(n))
	}
}

func TestAuthFailureMidCycleStopsWatcher(t *testing.T) {
	unauthorized := api.NewBroadcaster()

	chat := &fakeSource{err: &api.ApiError{Message: "expired", Status: 401}}
	chat.onFetch = unauthorized.Publish

	polls := &fakeSource{items: []Item{{ID: 1, AuthorID: 7, Body: "unreached"}}}

	local := newTestStore(t)
	w := New(chat, polls, local, local, func() int { return testSelfID }, 20*time.Millisecond)
	unauthorized.Subscribe(w.Stop)

	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for w.Running() {
		if time.Now().After(deadline) {
			t.Fatal("watcher still running after auth failure")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if polls.callCount() != 0 {
		t.Fatalf("poll fetch ran %d times after invalidation, want 0", polls.callCount())
	}

	// The timer must not fire again after the stop.
	fetchesAfterStop := chat.callCount()
	time.Sleep(60 * time.Millisecond)
	if chat.callCount() != fetchesAfterStop {
		t.Fatal("cycle fired after the watcher was stopped")
	}
}

func TestOverlappingTickIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	chat := &fakeSource{
		items: []Item{chatItem(1, 7, "slow")},
		block: release,
	}
	chat.onFetch = func() {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	polls := &fakeSource{}
	w, _ := newTestWatcher(t, chat, polls)

	done := make(chan struct{})
	go func() {
		w.Cycle(context.Background())
		close(done)
	}()

	<-started

	// A second tick while the first cycle is in flight must no-op.
	w.Cycle(context.Background())
	if chat.callCount() != 1 {
		t.Fatalf("chat fetch called %d times, want 1", chat.callCount())
	}

	close(release)
	<-done

	if chat.callCount() != 1 {
		t.Fatalf("chat fetch called %d times after completion, want 1", chat.callCount())
	}
}

func TestMissingIDsCountAsZero(t *testing.T) {
	chat := &fakeSource{items: []Item{
		{ID: 0, AuthorID: 7, Body: "no id"},
		chatItem(7, 7, "real"),
	}}
	w, local := newTestWatcher(t, chat, &fakeSource{})

	ctx := context.Background()
	if err := local.SetNumber(ctx, store.KeyLastSeenChat, 5); err != nil {
		t.Fatalf("seeding watermark: %v", err)
	}

	w.Cycle(ctx)

	if got := local.GetNumber(ctx, store.KeyLastSeenChat); got != 7 {
		t.Fatalf("chat watermark = %d, want 7", got)
	}
	n := notifications(drainMsgs(w))
	if len(n) != 1 || n[0].Message != "real" {
		t.Fatalf("notifications = %+v", n)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 80, "short"},
		{strings.Repeat("x", 80), 80, strings.Repeat("x", 80)},
		{strings.Repeat("x", 81), 80, strings.Repeat("x", 80) + "…"},
		{"héllo wörld", 5, "héllo" + "…"},
	}

	for _, tt := range tests {
		if got := excerpt(tt.in, tt.limit); got != tt.want {
			t.Errorf("excerpt(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
