package ttadapter

import (
	"fmt"
	"time"

	"teams-pollbot/internal/domain/poll"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// StateModel is the tuple stored in the poll_state space:
// [key, polls, activePollId|nil].
type StateModel struct {
	Key          string
	Polls        []PollModel
	ActivePollID *string
}

// PollModel is encoded as [id, question, options].
type PollModel struct {
	ID       string
	Question string
	Options  []OptionModel
}

// OptionModel is encoded as [id, text, votes] and each vote as
// [user, unix nanoseconds].
type OptionModel struct {
	ID    int
	Text  string
	Votes []poll.Vote
}

const (
	stateModelFields  = 3
	pollModelFields   = 3
	optionModelFields = 3
	voteModelFields   = 2
)

func NewStateModel(key string, state *poll.State) *StateModel {
	m := &StateModel{Key: key, Polls: make([]PollModel, 0, len(state.Polls))}
	for _, p := range state.Polls {
		pm := PollModel{ID: p.ID, Question: p.Question, Options: make([]OptionModel, 0, len(p.Options))}
		for _, o := range p.Options {
			pm.Options = append(pm.Options, OptionModel{ID: o.ID, Text: o.Text, Votes: o.Votes})
		}
		m.Polls = append(m.Polls, pm)
	}
	if state.ActivePollID != nil {
		id := *state.ActivePollID
		m.ActivePollID = &id
	}
	return m
}

func (m *StateModel) ToState() *poll.State {
	state := &poll.State{Polls: make([]*poll.Poll, 0, len(m.Polls))}
	for _, pm := range m.Polls {
		p := &poll.Poll{ID: pm.ID, Question: pm.Question, Options: make([]poll.Option, 0, len(pm.Options))}
		for _, om := range pm.Options {
			p.Options = append(p.Options, poll.Option{ID: om.ID, Text: om.Text, Votes: om.Votes})
		}
		state.Polls = append(state.Polls, p)
	}
	if m.ActivePollID != nil {
		id := *m.ActivePollID
		state.ActivePollID = &id
	}
	return state.Normalize()
}

func (m *StateModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(stateModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(m.Key); err != nil {
		return err
	}
	if err := e.EncodeArrayLen(len(m.Polls)); err != nil {
		return err
	}
	for i := range m.Polls {
		if err := m.Polls[i].encode(e); err != nil {
			return err
		}
	}
	if m.ActivePollID == nil {
		return e.EncodeNil()
	}
	return e.EncodeString(*m.ActivePollID)
}

func (m *StateModel) DecodeMsgpack(d *msgpack.Decoder) error {
	if err := expectArray(d, stateModelFields); err != nil {
		return err
	}
	var err error
	if m.Key, err = d.DecodeString(); err != nil {
		return err
	}
	n, err := d.DecodeArrayLen()
	if err != nil {
		return err
	}
	m.Polls = make([]PollModel, max(n, 0))
	for i := range m.Polls {
		if err = m.Polls[i].decode(d); err != nil {
			return err
		}
	}
	code, err := d.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		m.ActivePollID = nil
		return d.DecodeNil()
	}
	id, err := d.DecodeString()
	if err != nil {
		return err
	}
	m.ActivePollID = &id
	return nil
}

func (p *PollModel) encode(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(pollModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(p.ID); err != nil {
		return err
	}
	if err := e.EncodeString(p.Question); err != nil {
		return err
	}
	if err := e.EncodeArrayLen(len(p.Options)); err != nil {
		return err
	}
	for i := range p.Options {
		if err := p.Options[i].encode(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *PollModel) decode(d *msgpack.Decoder) error {
	if err := expectArray(d, pollModelFields); err != nil {
		return err
	}
	var err error
	if p.ID, err = d.DecodeString(); err != nil {
		return err
	}
	if p.Question, err = d.DecodeString(); err != nil {
		return err
	}
	n, err := d.DecodeArrayLen()
	if err != nil {
		return err
	}
	p.Options = make([]OptionModel, max(n, 0))
	for i := range p.Options {
		if err = p.Options[i].decode(d); err != nil {
			return err
		}
	}
	return nil
}

func (o *OptionModel) encode(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(optionModelFields); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(o.ID)); err != nil {
		return err
	}
	if err := e.EncodeString(o.Text); err != nil {
		return err
	}
	if err := e.EncodeArrayLen(len(o.Votes)); err != nil {
		return err
	}
	for _, v := range o.Votes {
		if err := e.EncodeArrayLen(voteModelFields); err != nil {
			return err
		}
		if err := e.EncodeString(v.User); err != nil {
			return err
		}
		if err := e.EncodeInt(v.Timestamp.UnixNano()); err != nil {
			return err
		}
	}
	return nil
}

func (o *OptionModel) decode(d *msgpack.Decoder) error {
	if err := expectArray(d, optionModelFields); err != nil {
		return err
	}
	var err error
	if o.ID, err = d.DecodeInt(); err != nil {
		return err
	}
	if o.Text, err = d.DecodeString(); err != nil {
		return err
	}
	n, err := d.DecodeArrayLen()
	if err != nil {
		return err
	}
	o.Votes = make([]poll.Vote, max(n, 0))
	for i := range o.Votes {
		if err = expectArray(d, voteModelFields); err != nil {
			return err
		}
		if o.Votes[i].User, err = d.DecodeString(); err != nil {
			return err
		}
		nanos, err := d.DecodeInt64()
		if err != nil {
			return err
		}
		o.Votes[i].Timestamp = time.Unix(0, nanos).UTC()
	}
	return nil
}

func expectArray(d *msgpack.Decoder, fields int) error {
	l, err := d.DecodeArrayLen()
	if err != nil {
		return err
	}
	if l != fields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	return nil
}
