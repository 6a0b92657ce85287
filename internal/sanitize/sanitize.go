// Package sanitize turns the HTML-ish text Teams sends into plain text.
package sanitize

import (
	"regexp"
)

var markup = regexp.MustCompile(`<.*?>`)

// Sanitizer strips markup. Elements of the dropped tags are removed
// together with their content before any other tag is stripped, so a
// mention such as <at>Poll Bot</at> disappears entirely instead of leaving
// "Poll Bot" behind.
type Sanitizer struct {
	dropped []*regexp.Regexp
}

func New(dropTags ...string) *Sanitizer {
	s := &Sanitizer{dropped: make([]*regexp.Regexp, 0, len(dropTags))}
	for _, tag := range dropTags {
		if tag == "" {
			continue
		}
		// Non-greedy and non-recursive: a nested element of the same name
		// ends at the first closing tag.
		q := regexp.QuoteMeta(tag)
		s.dropped = append(s.dropped, regexp.MustCompile(`(?s)<`+q+`.*?</`+q+`>`))
	}
	return s
}

func (s *Sanitizer) Sanitize(text string) string {
	for _, re := range s.dropped {
		text = re.ReplaceAllString(text, "")
	}
	return markup.ReplaceAllString(text, "")
}

// Sanitize is a one-off New(dropTags...).Sanitize(text).
func Sanitize(text string, dropTags ...string) string {
	return New(dropTags...).Sanitize(text)
}
