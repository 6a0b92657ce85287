package commands

import "strings"

type rule struct {
	keyword string
	build   func(args string) Command
}

// rules are tested in order and the first keyword found anywhere in the text
// wins, so "vote on my new poll" creates a poll. The order is part of the
// chat grammar users rely on; do not sort it.
var rules = []rule{
	{"new poll", func(args string) Command { return CreatePollCommand{Question: args} }},
	{"add option", func(args string) Command { return AddOptionCommand{Text: args} }},
	{"vote", func(args string) Command { return VoteCommand{Args: strings.Split(args, " ")} }},
	{"poll", func(string) Command { return ShowPollCommand{} }},
}

// Parse classifies sanitized message text. The argument string is the text
// with the first occurrence of the keyword removed, trimmed.
func Parse(text string) Command {
	for _, r := range rules {
		if !strings.Contains(text, r.keyword) {
			continue
		}
		args := strings.TrimSpace(strings.Replace(text, r.keyword, "", 1))
		return r.build(args)
	}
	return UnrecognizedCommand{Text: text}
}
