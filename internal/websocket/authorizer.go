package websocket

import (
	"strings"

	"teams-pollbot/internal/events"
)

// ChannelAuthorizer decides which channels a feed connection may listen on.
// Any holder of the shared secret can read every poll, so the only check is
// that the channel is a poll channel at all.
type ChannelAuthorizer struct{}

func NewChannelAuthorizer() *ChannelAuthorizer {
	return &ChannelAuthorizer{}
}

func (a *ChannelAuthorizer) CanSubscribe(channel string) bool {
	if !strings.HasPrefix(channel, events.ChannelPrefixPoll) {
		return false
	}
	rest := strings.TrimPrefix(channel, events.ChannelPrefixPoll)
	return rest != "" && !strings.ContainsAny(rest, "*?[]")
}
