package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"teams-pollbot/internal/domain/poll"
	"teams-pollbot/internal/events"
	"teams-pollbot/internal/repository"
	"teams-pollbot/internal/transport/httpdto"
	pollbot_errors "teams-pollbot/pkg/errors"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.channels)
}

type flakyRepository struct {
	*repository.MemoryStateRepository
	loadErr error
	saveErr error
}

func (r *flakyRepository) Load(ctx context.Context) (*poll.State, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.MemoryStateRepository.Load(ctx)
}

func (r *flakyRepository) Save(ctx context.Context, state *poll.State) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.MemoryStateRepository.Save(ctx, state)
}

type harness struct {
	auth *AuthService
	repo *repository.MemoryStateRepository
	pub  *capturePublisher
	d    *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		auth: NewAuthService(testSecret),
		repo: repository.NewMemoryStateRepository(),
		pub:  &capturePublisher{},
	}
	h.d = NewDispatcher(h.auth, h.repo, WithPublisher(h.pub), WithClock(func() time.Time { return fixedNow }))
	return h
}

func messageBody(t *testing.T, sender, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"type": "message",
		"text": text,
		"from": map[string]string{"id": "29:1", "name": sender},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func (h *harness) send(t *testing.T, sender, text string) Outcome {
	t.Helper()
	body := messageBody(t, sender, text)
	return h.d.Dispatch(context.Background(), body, h.auth.Sign(body))
}

func expectText(t *testing.T, out Outcome, want string) {
	t.Helper()
	if out.Status != http.StatusOK {
		t.Fatalf("Expected status 200, got %d (err %v)", out.Status, out.Err)
	}
	if out.Reply == nil || out.Reply.Type != "message" {
		t.Fatalf("Expected a message reply, got %+v", out.Reply)
	}
	if out.Reply.Text != want {
		t.Errorf("Reply text = %q, want %q", out.Reply.Text, want)
	}
}

func TestDispatchConversation(t *testing.T) {
	h := newHarness(t)

	expectText(t, h.send(t, "Alice", "<at>Poll Bot</at> new poll Lunch?"), `New poll created with question: "Lunch?"`)
	expectText(t, h.send(t, "Alice", "<at>Poll Bot</at> add option tacos"), `Option "tacos" added to the active poll.`)
	expectText(t, h.send(t, "Bob", "<at>Poll Bot</at> add option <b>pizza</b>"), `Option "pizza" added to the active poll.`)
	expectText(t, h.send(t, "Alice", "<at>Poll Bot</at> vote 2"), `Vote recorded for option "pizza" by user "Alice".`)
	expectText(t, h.send(t, "Alice", "<at>Poll Bot</at> vote 9"), `Option with ID "9" not found in the active poll.`)

	out := h.send(t, "Carol", "<at>Poll Bot</at> list poll")
	if out.Status != http.StatusOK || out.Reply == nil {
		t.Fatalf("Unexpected outcome %+v", out)
	}
	if out.Reply.Text != "" || len(out.Reply.Attachments) != 1 {
		t.Fatalf("Expected a single hero card, got %+v", out.Reply)
	}
	card := out.Reply.Attachments[0]
	if card.ContentType != httpdto.HeroCardContentType {
		t.Errorf("Unexpected content type %q", card.ContentType)
	}
	if card.Content.Title != "Active Poll: Lunch?" || card.Content.Subtitle != "Options:" {
		t.Errorf("Unexpected card header %+v", card.Content)
	}
	if card.Content.Text != "1 • tacos\n2 • pizza" {
		t.Errorf("Unexpected card text %q", card.Content.Text)
	}

	if h.repo.Loads() != 6 {
		t.Errorf("Expected 6 loads, got %d", h.repo.Loads())
	}
	if h.repo.Saves() != 4 {
		t.Errorf("Expected 4 saves, got %d", h.repo.Saves())
	}

	state, _ := h.repo.Load(context.Background())
	active, err := state.ActivePoll()
	if err != nil {
		t.Fatalf("ActivePoll() error = %v", err)
	}
	votes := active.Options[1].Votes
	if len(votes) != 1 || votes[0].User != "Alice" || !votes[0].Timestamp.Equal(fixedNow) {
		t.Errorf("Unexpected stored votes %+v", votes)
	}

	if h.pub.count() != 8 {
		t.Errorf("Expected 4 events on 2 channels, got %d publishes", h.pub.count())
	}
	var env events.Envelope
	if err := json.Unmarshal(h.pub.payloads[len(h.pub.payloads)-1], &env); err != nil {
		t.Fatalf("Unmarshal event error = %v", err)
	}
	if env.EventType != events.EventTypePollVoteRecorded || env.AggregateID != active.ID {
		t.Errorf("Unexpected last event %+v", env)
	}
}

func TestDispatchUnauthenticated(t *testing.T) {
	h := newHarness(t)
	body := messageBody(t, "Mallory", "new poll hacked")

	headers := []string{"", "HMAC AAAA", h.auth.Sign([]byte("different body"))}
	for _, header := range headers {
		out := h.d.Dispatch(context.Background(), body, header)
		if out.Status != http.StatusForbidden {
			t.Errorf("Header %q: expected 403, got %d", header, out.Status)
		}
		if out.Reply == nil || out.Reply.Text != "Error: message sender cannot be authenticated." {
			t.Errorf("Header %q: unexpected reply %+v", header, out.Reply)
		}
	}

	if h.repo.Loads() != 0 || h.repo.Saves() != 0 {
		t.Errorf("Rejected calls must not touch storage, got %d loads %d saves", h.repo.Loads(), h.repo.Saves())
	}
}

func TestDispatchLiteralSecret(t *testing.T) {
	h := newHarness(t)
	body := messageBody(t, "Alice", "new poll via secret")

	out := h.d.Dispatch(context.Background(), body, testSecret)
	expectText(t, out, `New poll created with question: "via secret"`)
}

func TestDispatchMalformedBody(t *testing.T) {
	h := newHarness(t)
	body := []byte("{not json")

	out := h.d.Dispatch(context.Background(), body, h.auth.Sign(body))
	if out.Status != http.StatusInternalServerError || out.Err == nil {
		t.Fatalf("Expected 500 with error, got %+v", out)
	}
	if !strings.HasPrefix(out.ErrorText(), "Error: ") {
		t.Errorf("Unexpected error text %q", out.ErrorText())
	}
	if h.repo.Loads() != 0 {
		t.Errorf("Expected no loads, got %d", h.repo.Loads())
	}
}

func TestDispatchWithoutActivePoll(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"add option", "add option tacos"},
		{"vote", "vote 1"},
		{"show", "poll"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			expectText(t, h.send(t, "Alice", tt.text), "No active poll. Create a new poll first.")
			if h.repo.Saves() != 0 {
				t.Errorf("Expected no saves, got %d", h.repo.Saves())
			}
		})
	}
}

func TestDispatchDanglingActivePoll(t *testing.T) {
	h := newHarness(t)
	missing := "deleted-poll"
	state := poll.NewState()
	state.ActivePollID = &missing
	if err := h.repo.Save(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"add option x", "vote 1", "list poll"} {
		expectText(t, h.send(t, "Alice", text), "Active poll not found.")
	}
	if h.repo.Saves() != 1 {
		t.Errorf("Expected only the seeding save, got %d", h.repo.Saves())
	}
}

func TestDispatchUnrecognized(t *testing.T) {
	h := newHarness(t)
	raw := "<at>Poll Bot</at> hello there"

	expectText(t, h.send(t, "Alice", raw),
		fmt.Sprintf("**You typed**: %s\n**Commands supported**: new poll, add option, vote, list poll", raw))
}

func TestDispatchVoteIgnoresVoterOverride(t *testing.T) {
	h := newHarness(t)
	h.send(t, "Alice", "new poll q")
	h.send(t, "Alice", "add option a")

	expectText(t, h.send(t, "Alice", "vote 1 Bob"), `Vote recorded for option "a" by user "Alice".`)
}

func TestDispatchSaveFailure(t *testing.T) {
	repo := &flakyRepository{
		MemoryStateRepository: repository.NewMemoryStateRepository(),
		saveErr:               fmt.Errorf("%w: disk full", pollbot_errors.ErrStorageWriteFailed),
	}
	pub := &capturePublisher{}
	auth := NewAuthService(testSecret)
	d := NewDispatcher(auth, repo, WithPublisher(pub))

	body := messageBody(t, "Alice", "new poll q")
	expectText(t, d.Dispatch(context.Background(), body, auth.Sign(body)), `New poll created with question: "q"`)
	if pub.count() != 0 {
		t.Errorf("Expected no events for an unsaved mutation, got %d", pub.count())
	}
}

func TestDispatchLoadFailureStartsEmpty(t *testing.T) {
	repo := &flakyRepository{
		MemoryStateRepository: repository.NewMemoryStateRepository(),
		loadErr:               errors.New("connection refused"),
	}
	auth := NewAuthService(testSecret)
	d := NewDispatcher(auth, repo)

	body := messageBody(t, "Alice", "list poll")
	expectText(t, d.Dispatch(context.Background(), body, auth.Sign(body)), "No active poll. Create a new poll first.")
}

func TestDispatchSerializesUpdates(t *testing.T) {
	h := newHarness(t)
	h.send(t, "Alice", "new poll q")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.send(t, fmt.Sprintf("user%d", i), fmt.Sprintf("add option opt%d", i))
		}(i)
	}
	wg.Wait()

	summary, err := h.d.ActivePoll(context.Background())
	if err != nil {
		t.Fatalf("ActivePoll() error = %v", err)
	}
	if len(summary.Options) != workers {
		t.Fatalf("Expected %d options, got %d", workers, len(summary.Options))
	}
	for i, o := range summary.Options {
		if o.ID != i+1 {
			t.Errorf("Option %d has id %d", i, o.ID)
		}
	}
}

func TestActivePoll(t *testing.T) {
	h := newHarness(t)
	if _, err := h.d.ActivePoll(context.Background()); !errors.Is(err, pollbot_errors.ErrNoActivePoll) {
		t.Errorf("ActivePoll() error = %v, want ErrNoActivePoll", err)
	}

	h.send(t, "Alice", "new poll q")
	h.send(t, "Alice", "add option a")
	h.send(t, "Bob", "vote 1")

	summary, err := h.d.ActivePoll(context.Background())
	if err != nil {
		t.Fatalf("ActivePoll() error = %v", err)
	}
	if summary.Question != "q" || summary.TotalVotes != 1 || summary.Options[0].Voters[0] != "Bob" {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
