// Package extract pulls task fields out of a free-text request using fixed
// keyword heuristics. Extraction never fails; every field has a default.
package extract

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"task-assistant/internal/domain"
)

// DefaultTitle is used when no title pattern matches.
const DefaultTitle = "New Task"

// titleSpan is the number of words taken after a title phrase.
const titleSpan = 3

var (
	taskToPattern     = regexp.MustCompile(`(?i)task to`)
	remindMeToPattern = regexp.MustCompile(`(?i)remind me to`)
)

// Fields is everything extracted from one request.
type Fields struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
}

// Extractor applies the heuristics against an injectable clock.
type Extractor struct {
	now func() time.Time
}

type Option func(*Extractor)

// WithClock replaces time.Now for due-date arithmetic.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract computes every field of message independently.
func (e *Extractor) Extract(message string) Fields {
	return Fields{
		Title:       e.Title(message),
		Description: e.Description(message),
		Priority:    e.Priority(message),
		DueDate:     e.DueDate(message),
	}
}

// Title applies the first matching rule: "task to", then "remind me to",
// then the words between "create" and "task".
func (e *Extractor) Title(message string) string {
	var title string
	switch {
	case taskToPattern.MatchString(message):
		title = wordsAfter(message, taskToPattern)
	case remindMeToPattern.MatchString(message):
		title = wordsAfter(message, remindMeToPattern)
	default:
		title = between(message, "create", "task")
	}
	if title == "" {
		return DefaultTitle
	}
	return truncate(title, domain.MaxTitleLength)
}

func wordsAfter(message string, phrase *regexp.Regexp) string {
	loc := phrase.FindStringIndex(message)
	words := strings.Fields(message[loc[1]:])
	if len(words) > titleSpan {
		words = words[:titleSpan]
	}
	return strings.Join(words, " ")
}

// between returns the words strictly between the first word equal to open
// and the first word equal to close, when open comes first.
func between(message, open, close string) string {
	lower := strings.ToLower(message)
	if !strings.Contains(lower, open) || !strings.Contains(lower, close) {
		return ""
	}
	words := strings.Fields(message)
	openIdx, closeIdx := -1, -1
	for i, w := range words {
		if openIdx < 0 && strings.EqualFold(w, open) {
			openIdx = i
		}
		if closeIdx < 0 && strings.EqualFold(w, close) {
			closeIdx = i
		}
	}
	if openIdx < 0 || closeIdx <= openIdx {
		return ""
	}
	return strings.Join(words[openIdx+1:closeIdx], " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Description is the request verbatim.
func (e *Extractor) Description(message string) string {
	return message
}

// Priority scans for urgent, high and low in that order.
func (e *Extractor) Priority(message string) domain.Priority {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "urgent"):
		return domain.PriorityUrgent
	case strings.Contains(lower, "high"):
		// also covers "high priority"
		return domain.PriorityHigh
	case strings.Contains(lower, "low"):
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

// DueDate maps "tomorrow" to one day ahead and "next week" to seven.
func (e *Extractor) DueDate(message string) *time.Time {
	lower := strings.ToLower(message)
	var due time.Time
	switch {
	case strings.Contains(lower, "tomorrow"):
		due = e.now().Add(24 * time.Hour)
	case strings.Contains(lower, "next week"):
		due = e.now().Add(7 * 24 * time.Hour)
	default:
		return nil
	}
	return &due
}
