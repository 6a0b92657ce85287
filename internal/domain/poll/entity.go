package poll

import (
	"time"

	"github.com/google/uuid"
)

// Poll is a question with an append-only list of options. The JSON layout
// matches the documents written by earlier versions of the bot.
type Poll struct {
	ID       string   `json:"_id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
	// Votes is a legacy poll-level list that is never written to.
	Votes []Vote `json:"votes"`
}

// Option ids are 1-based and assigned as len(options)+1 at append time.
type Option struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes []Vote `json:"votes"`
}

// Vote is keyed by display name, not by a stable user id; two users sharing
// a display name share one vote.
type Vote struct {
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPoll(question string) *Poll {
	return &Poll{
		ID:       uuid.NewString(),
		Question: question,
		Options:  []Option{},
		Votes:    []Vote{},
	}
}

// Option returns the option with the given id.
func (p *Poll) Option(id int) (*Option, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

// HasVoted reports whether user currently has a vote on the option.
func (o *Option) HasVoted(user string) bool {
	for _, v := range o.Votes {
		if v.User == user {
			return true
		}
	}
	return false
}

// Summary is a read-only tally of a poll, used by the status endpoint and
// the live feed.
type Summary struct {
	ID         string          `json:"id"`
	Question   string          `json:"question"`
	Options    []OptionSummary `json:"options"`
	TotalVotes int             `json:"total_votes"`
}

type OptionSummary struct {
	ID     int      `json:"id"`
	Text   string   `json:"text"`
	Votes  int      `json:"votes"`
	Voters []string `json:"voters"`
}

func (p *Poll) Summary() Summary {
	s := Summary{ID: p.ID, Question: p.Question, Options: make([]OptionSummary, 0, len(p.Options))}
	for _, o := range p.Options {
		voters := make([]string, 0, len(o.Votes))
		for _, v := range o.Votes {
			voters = append(voters, v.User)
		}
		s.Options = append(s.Options, OptionSummary{ID: o.ID, Text: o.Text, Votes: len(o.Votes), Voters: voters})
		s.TotalVotes += len(o.Votes)
	}
	return s
}
