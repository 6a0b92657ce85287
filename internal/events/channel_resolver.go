package events

const (
	ChannelPrefixPoll = "channel:poll:"
	// ChannelActivePoll receives every event for whichever poll is active.
	ChannelActivePoll = ChannelPrefixPoll + "active"
	// ChannelPattern matches every poll channel on a redis PSUBSCRIBE.
	ChannelPattern = ChannelPrefixPoll + "*"
)

// ResolveChannels returns the channels an envelope is published on.
func ResolveChannels(env Envelope) []string {
	if env.AggregateType != AggregateTypePoll {
		return nil
	}
	channels := []string{ChannelActivePoll}
	if env.AggregateID != "" {
		channels = append(channels, ChannelPrefixPoll+env.AggregateID)
	}
	return channels
}
