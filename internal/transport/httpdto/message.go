package httpdto

import (
	"encoding/json"
	"fmt"
	"strings"
)

const HeroCardContentType = "application/vnd.microsoft.card.hero"

// IncomingMessage is the part of the Teams activity the bot reads. Everything
// else in the payload is ignored.
type IncomingMessage struct {
	Text string      `json:"text"`
	From MessageFrom `json:"from"`
}

type MessageFrom struct {
	Name string `json:"name"`
}

// DecodeIncomingMessage parses a raw webhook body.
func DecodeIncomingMessage(body []byte) (IncomingMessage, error) {
	var msg IncomingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return IncomingMessage{}, fmt.Errorf("invalid message payload: %w", err)
	}
	return msg, nil
}

// Reply is the synchronous response to an outgoing-webhook call.
type Reply struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	ContentType string   `json:"contentType"`
	Content     HeroCard `json:"content"`
}

type HeroCard struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
}

func NewTextReply(format string, args ...interface{}) Reply {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return Reply{Type: "message", Text: text}
}

func NewHeroCardReply(card HeroCard) Reply {
	return Reply{
		Type: "message",
		Attachments: []Attachment{{
			ContentType: HeroCardContentType,
			Content:     card,
		}},
	}
}

// OptionLine renders one option of the hero card body.
func OptionLine(id int, text string) string {
	return fmt.Sprintf("%d • %s", id, text)
}

func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
