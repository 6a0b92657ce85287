package poll

import (
	"strconv"
	"strings"
	"time"

	pollbot_errors "teams-pollbot/pkg/errors"
)

// State is the whole persisted document: every poll ever created plus a
// pointer to the one currently accepting options and votes.
type State struct {
	Polls        []*Poll `json:"polls"`
	ActivePollID *string `json:"activePollId"`
}

func NewState() *State {
	return &State{Polls: []*Poll{}}
}

// Normalize fills nil slices left behind by older or hand-edited documents
// so the rest of the code never has to check for them.
func (s *State) Normalize() *State {
	if s.Polls == nil {
		s.Polls = []*Poll{}
	}
	polls := s.Polls[:0]
	for _, p := range s.Polls {
		if p == nil {
			continue
		}
		if p.Options == nil {
			p.Options = []Option{}
		}
		if p.Votes == nil {
			p.Votes = []Vote{}
		}
		for i := range p.Options {
			if p.Options[i].Votes == nil {
				p.Options[i].Votes = []Vote{}
			}
		}
		polls = append(polls, p)
	}
	s.Polls = polls
	return s
}

// CreatePoll appends a new poll and makes it the active one.
func (s *State) CreatePoll(question string) *Poll {
	p := NewPoll(question)
	s.Polls = append(s.Polls, p)
	id := p.ID
	s.ActivePollID = &id
	return p
}

// ActivePoll resolves the active-poll pointer.
func (s *State) ActivePoll() (*Poll, error) {
	if s.ActivePollID == nil || *s.ActivePollID == "" {
		return nil, pollbot_errors.ErrNoActivePoll
	}
	for _, p := range s.Polls {
		if p.ID == *s.ActivePollID {
			return p, nil
		}
	}
	return nil, pollbot_errors.ErrActivePollNotFound
}

// AddOption appends an option to the active poll.
func (s *State) AddOption(text string) (*Option, error) {
	p, err := s.ActivePoll()
	if err != nil {
		return nil, err
	}
	p.Options = append(p.Options, Option{
		ID:    len(p.Options) + 1,
		Text:  text,
		Votes: []Vote{},
	})
	return &p.Options[len(p.Options)-1], nil
}

// Vote records voter's choice on the active poll. Any earlier vote by the
// same name on any option of that poll is removed first.
func (s *State) Vote(optionID int, voter string, at time.Time) (*Option, error) {
	p, err := s.ActivePoll()
	if err != nil {
		return nil, err
	}
	target, ok := p.Option(optionID)
	if !ok {
		return nil, pollbot_errors.ErrOptionNotFound
	}

	for i := range p.Options {
		p.Options[i].Votes = withoutVoter(p.Options[i].Votes, voter)
	}
	target.Votes = append(target.Votes, Vote{User: voter, Timestamp: at})
	return target, nil
}

// VoteByRef is Vote with the option id still in its textual form as typed
// in chat. A decimal integer is accepted with surrounding whitespace, leading
// zeros and an optional sign, so "+1" and "01" both pick option 1. Decimal
// or exponent forms such as "1.0" and "1e0" match no option.
func (s *State) VoteByRef(ref string, voter string, at time.Time) (*Option, error) {
	if _, err := s.ActivePoll(); err != nil {
		return nil, err
	}
	id, err := strconv.Atoi(strings.TrimSpace(ref))
	if err != nil {
		return nil, pollbot_errors.ErrOptionNotFound
	}
	return s.Vote(id, voter, at)
}

func withoutVoter(votes []Vote, voter string) []Vote {
	kept := votes[:0]
	for _, v := range votes {
		if v.User != voter {
			kept = append(kept, v)
		}
	}
	return kept
}
