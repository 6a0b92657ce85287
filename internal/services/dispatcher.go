package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"teams-pollbot/internal/commands"
	"teams-pollbot/internal/domain/poll"
	"teams-pollbot/internal/events"
	"teams-pollbot/internal/repository"
	"teams-pollbot/internal/sanitize"
	"teams-pollbot/internal/transport/httpdto"
	pollbot_errors "teams-pollbot/pkg/errors"
	"teams-pollbot/pkg/logger"
)

const (
	// MentionTag is the element Teams wraps the bot mention in.
	MentionTag = "at"

	replyUnauthenticated = "Error: message sender cannot be authenticated."
)

// Outcome is the HTTP answer to one webhook call. Reply is set for 200 and
// 403; Err is set for 500.
type Outcome struct {
	Status int
	Reply  *httpdto.Reply
	Err    error
}

// ErrorText is the plain-text body sent with a 500.
func (o Outcome) ErrorText() string {
	return fmt.Sprintf("Error: %v", o.Err)
}

// Dispatcher runs one webhook call end to end: authenticate, decode,
// sanitize, parse, load, execute, save, reply. Calls are serialized so
// concurrent load/save cycles within one process cannot lose updates.
type Dispatcher struct {
	auth      *AuthService
	repo      repository.StateRepository
	bus       *commands.Bus
	sanitizer *sanitize.Sanitizer
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time

	mu sync.Mutex
}

type DispatcherOption func(*Dispatcher)

// WithPublisher sends a poll event after every saved mutation.
func WithPublisher(p events.Publisher) DispatcherOption {
	return func(d *Dispatcher) { d.publisher = p }
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func WithLogger(l *logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

func NewDispatcher(auth *AuthService, repo repository.StateRepository, opts ...DispatcherOption) *Dispatcher {
	bus := commands.NewBus()
	RegisterPollHandlers(bus)

	d := &Dispatcher{
		auth:      auth,
		repo:      repo,
		bus:       bus,
		sanitizer: sanitize.New(MentionTag),
		logger:    logger.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, body []byte, authHeader string) Outcome {
	log := d.logger.WithContext(ctx)

	if !d.auth.Authenticate(body, authHeader) {
		log.Warnf("rejected webhook call: %v", pollbot_errors.ErrAuthenticationFailed)
		reply := httpdto.NewTextReply(replyUnauthenticated)
		return Outcome{Status: http.StatusForbidden, Reply: &reply}
	}

	msg, err := httpdto.DecodeIncomingMessage(body)
	if err != nil {
		log.Errorf("failed to decode webhook body: %v", err)
		return Outcome{Status: http.StatusInternalServerError, Err: err}
	}

	ctx = context.WithValue(ctx, logger.SenderKey, msg.From.Name)
	log = d.logger.WithContext(ctx)

	text := d.sanitizer.Sanitize(msg.Text)
	log.Infof("received message: %s", text)
	cmd := commands.Parse(text)

	d.mu.Lock()
	defer d.mu.Unlock()

	state, err := d.repo.Load(ctx)
	if err != nil {
		log.Errorf("failed to load poll state, starting empty: %v", err)
		state = poll.NewState()
	}

	env := &commands.Env{
		State:   state,
		Sender:  msg.From.Name,
		RawText: msg.Text,
		Now:     d.now(),
	}
	res, err := d.bus.Execute(ctx, env, cmd)
	if err != nil {
		log.Errorf("command %s failed: %v", cmd.CommandType(), err)
		return Outcome{Status: http.StatusInternalServerError, Err: err}
	}

	if res.Mutated {
		if err := d.repo.Save(ctx, state); err != nil {
			log.Errorf("failed to save poll state: %v", err)
		} else {
			d.publish(ctx, env, res)
		}
	}

	reply, ok := res.Payload.(httpdto.Reply)
	if !ok {
		err := fmt.Errorf("command %s produced no reply", cmd.CommandType())
		log.Errorf("%v", err)
		return Outcome{Status: http.StatusInternalServerError, Err: err}
	}
	return Outcome{Status: http.StatusOK, Reply: &reply}
}

// ActivePoll returns the tally of the active poll as currently stored.
func (d *Dispatcher) ActivePoll(ctx context.Context) (poll.Summary, error) {
	state, err := d.repo.Load(ctx)
	if err != nil {
		return poll.Summary{}, err
	}
	p, err := state.ActivePoll()
	if err != nil {
		return poll.Summary{}, err
	}
	return p.Summary(), nil
}

// publish is best effort: the reply has already been decided and the state
// saved, so a failure is only logged.
func (d *Dispatcher) publish(ctx context.Context, env *commands.Env, res commands.Result) {
	if d.publisher == nil || res.EventType == "" {
		return
	}
	log := d.logger.WithContext(ctx)

	p, err := env.State.ActivePoll()
	if err != nil {
		log.Warnf("no active poll to publish for %s: %v", res.EventType, err)
		return
	}
	envelope, err := events.NewEnvelope(res.EventType, events.AggregateTypePoll, res.AggregateID, env.Now,
		events.PollUpdated{Actor: env.Sender, Poll: p.Summary()})
	if err != nil {
		log.Warnf("failed to build %s event: %v", res.EventType, err)
		return
	}
	if err := events.PublishEnvelope(ctx, d.publisher, envelope); err != nil {
		log.Warnf("failed to publish %s event: %v", res.EventType, err)
	}
}
