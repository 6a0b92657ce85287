package commands

import (
	"context"
	"errors"
	"time"

	"teams-pollbot/internal/domain/poll"
)

var ErrHandlerNotFound = errors.New("command handler not found")

type Kind string

const (
	KindCreatePoll   Kind = "poll.create"
	KindAddOption    Kind = "poll.add_option"
	KindVote         Kind = "poll.vote"
	KindShowPoll     Kind = "poll.show"
	KindUnrecognized Kind = "unrecognized"
)

type Command interface {
	CommandType() Kind
}

type CreatePollCommand struct {
	Question string
}

type AddOptionCommand struct {
	Text string
}

// VoteCommand holds the vote arguments split on single spaces. The first is
// the option id. A second argument (a voter name) is accepted by the grammar
// but votes are always attributed to the message sender.
type VoteCommand struct {
	Args []string
}

type ShowPollCommand struct{}

// UnrecognizedCommand carries the sanitized text that matched no keyword.
type UnrecognizedCommand struct {
	Text string
}

func (CreatePollCommand) CommandType() Kind   { return KindCreatePoll }
func (AddOptionCommand) CommandType() Kind    { return KindAddOption }
func (VoteCommand) CommandType() Kind         { return KindVote }
func (ShowPollCommand) CommandType() Kind     { return KindShowPoll }
func (UnrecognizedCommand) CommandType() Kind { return KindUnrecognized }

// OptionRef is the option id as typed, or "" when absent.
func (c VoteCommand) OptionRef() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// VoterOverride is the unused second argument, or "" when absent.
func (c VoteCommand) VoterOverride() string {
	if len(c.Args) < 2 {
		return ""
	}
	return c.Args[1]
}

// Env is what a handler runs against: the loaded poll document and the
// message it was parsed from.
type Env struct {
	State   *poll.State
	Sender  string
	RawText string
	Now     time.Time
}

type Result struct {
	AggregateID string
	// EventType names the event to publish once a mutation is saved.
	EventType string
	Payload   interface{}
	// Mutated is set when the handler changed State and it must be saved.
	Mutated bool
}

type Handler interface {
	Handle(ctx context.Context, env *Env, cmd Command) (Result, error)
}

type HandlerFunc func(ctx context.Context, env *Env, cmd Command) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, env *Env, cmd Command) (Result, error) {
	return f(ctx, env, cmd)
}
