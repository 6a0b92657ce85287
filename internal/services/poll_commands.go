package services

import (
	"context"
	"errors"
	"fmt"

	"teams-pollbot/internal/commands"
	"teams-pollbot/internal/domain/poll"
	"teams-pollbot/internal/events"
	"teams-pollbot/internal/transport/httpdto"
	pollbot_errors "teams-pollbot/pkg/errors"
)

const (
	replyPollCreated     = `New poll created with question: "%s"`
	replyOptionAdded     = `Option "%s" added to the active poll.`
	replyVoteRecorded    = `Vote recorded for option "%s" by user "%s".`
	replyOptionNotFound  = `Option with ID "%s" not found in the active poll.`
	replyNoActivePoll    = "No active poll. Create a new poll first."
	replyActiveNotFound  = "Active poll not found."
	replyUnrecognized    = "**You typed**: %s\n**Commands supported**: new poll, add option, vote, list poll"
	heroCardTitlePrefix  = "Active Poll: "
	heroCardOptionsTitle = "Options:"
)

// RegisterPollHandlers wires the chat commands onto bus.
func RegisterPollHandlers(bus *commands.Bus) {
	bus.Register(commands.KindCreatePoll, commands.HandlerFunc(handleCreatePoll))
	bus.Register(commands.KindAddOption, commands.HandlerFunc(handleAddOption))
	bus.Register(commands.KindVote, commands.HandlerFunc(handleVote))
	bus.Register(commands.KindShowPoll, commands.HandlerFunc(handleShowPoll))
	bus.Register(commands.KindUnrecognized, commands.HandlerFunc(handleUnrecognized))
}

func handleCreatePoll(_ context.Context, env *commands.Env, cmd commands.Command) (commands.Result, error) {
	c, ok := cmd.(commands.CreatePollCommand)
	if !ok {
		return commands.Result{}, unexpectedCommand(cmd)
	}
	p := env.State.CreatePoll(c.Question)
	return commands.Result{
		AggregateID: p.ID,
		EventType:   events.EventTypePollCreated,
		Payload:     httpdto.NewTextReply(replyPollCreated, c.Question),
		Mutated:     true,
	}, nil
}

func handleAddOption(_ context.Context, env *commands.Env, cmd commands.Command) (commands.Result, error) {
	c, ok := cmd.(commands.AddOptionCommand)
	if !ok {
		return commands.Result{}, unexpectedCommand(cmd)
	}
	if _, err := env.State.AddOption(c.Text); err != nil {
		return activePollFailure(err)
	}
	return commands.Result{
		AggregateID: activePollID(env.State),
		EventType:   events.EventTypePollOptionAdded,
		Payload:     httpdto.NewTextReply(replyOptionAdded, c.Text),
		Mutated:     true,
	}, nil
}

// handleVote always attributes the vote to the message sender. A second
// argument naming another user is ignored.
func handleVote(_ context.Context, env *commands.Env, cmd commands.Command) (commands.Result, error) {
	c, ok := cmd.(commands.VoteCommand)
	if !ok {
		return commands.Result{}, unexpectedCommand(cmd)
	}
	ref := c.OptionRef()
	option, err := env.State.VoteByRef(ref, env.Sender, env.Now)
	if errors.Is(err, pollbot_errors.ErrOptionNotFound) {
		return commands.Result{Payload: httpdto.NewTextReply(replyOptionNotFound, ref)}, nil
	}
	if err != nil {
		return activePollFailure(err)
	}
	return commands.Result{
		AggregateID: activePollID(env.State),
		EventType:   events.EventTypePollVoteRecorded,
		Payload:     httpdto.NewTextReply(replyVoteRecorded, option.Text, env.Sender),
		Mutated:     true,
	}, nil
}

func handleShowPoll(_ context.Context, env *commands.Env, _ commands.Command) (commands.Result, error) {
	p, err := env.State.ActivePoll()
	if err != nil {
		return activePollFailure(err)
	}
	return commands.Result{AggregateID: p.ID, Payload: PollCardReply(p)}, nil
}

func handleUnrecognized(_ context.Context, env *commands.Env, _ commands.Command) (commands.Result, error) {
	return commands.Result{Payload: httpdto.NewTextReply(replyUnrecognized, env.RawText)}, nil
}

// PollCardReply renders a poll as a hero card with one "<id> • <text>" line
// per option.
func PollCardReply(p *poll.Poll) httpdto.Reply {
	lines := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		lines = append(lines, httpdto.OptionLine(o.ID, o.Text))
	}
	return httpdto.NewHeroCardReply(httpdto.HeroCard{
		Title:    heroCardTitlePrefix + p.Question,
		Subtitle: heroCardOptionsTitle,
		Text:     httpdto.JoinLines(lines),
	})
}

func activePollFailure(err error) (commands.Result, error) {
	switch {
	case errors.Is(err, pollbot_errors.ErrNoActivePoll):
		return commands.Result{Payload: httpdto.NewTextReply(replyNoActivePoll)}, nil
	case errors.Is(err, pollbot_errors.ErrActivePollNotFound):
		return commands.Result{Payload: httpdto.NewTextReply(replyActiveNotFound)}, nil
	default:
		return commands.Result{}, err
	}
}

func activePollID(state *poll.State) string {
	if state.ActivePollID == nil {
		return ""
	}
	return *state.ActivePollID
}

func unexpectedCommand(cmd commands.Command) error {
	return fmt.Errorf("%w: unexpected command %T", pollbot_errors.ErrInvalidInput, cmd)
}
