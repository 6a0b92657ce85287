package events

// Poll events. These follow the format: domain.action
const (
	EventTypePollCreated      = "poll.created"
	EventTypePollOptionAdded  = "poll.option_added"
	EventTypePollVoteRecorded = "poll.vote_recorded"
)

const AggregateTypePoll = "poll"

// PollUpdated is the payload of every poll event: who triggered it and the
// poll's tally after the change.
type PollUpdated struct {
	Actor string      `json:"actor"`
	Poll  interface{} `json:"poll"`
}
