// Package intent maps classifier output to one task operation through an
// ordered keyword rule table.
package intent

import (
	"strings"

	"task-assistant/internal/domain"
)

// Intent is the task operation selected for an utterance.
type Intent string

const (
	Create Intent = "create"
	List   Intent = "list"
	Update Intent = "update"
	Delete Intent = "delete"
	Help   Intent = "help"
)

func (i Intent) String() string { return string(i) }

// Mutates reports whether the intent changes the store when it succeeds.
func (i Intent) Mutates() bool {
	return i == Create || i == Update || i == Delete
}

// Filter is the sub-selection of a list intent. Both nil means list all.
type Filter struct {
	Priority *domain.Priority
	Status   *domain.Status
}

// IsZero reports whether no filter applies.
func (f Filter) IsZero() bool {
	return f.Priority == nil && f.Status == nil
}

// Decision is the outcome of classification.
type Decision struct {
	Intent Intent
	// Rule is the name of the rule that fired.
	Rule   string
	Filter Filter
	// ForceStatus is set on updates that should complete the task.
	ForceStatus *domain.Status
}

// Rule is one row of the table. A rule fires when the text contains any
// of its keywords; Refine then fills in intent-specific details.
type Rule struct {
	Name     string
	Intent   Intent
	Keywords []string
	Refine   func(text string, d *Decision)
}

// Matches reports whether any keyword occurs in the lower-cased text.
func (r Rule) Matches(text string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

var rules = []Rule{
	{
		Name:     "create",
		Intent:   Create,
		Keywords: []string{"create", "add", "new task", "remind me"},
	},
	{
		Name:     "list",
		Intent:   List,
		Keywords: []string{"show", "list", "display", "get", "find"},
		Refine:   refineList,
	},
	{
		Name:     "update",
		Intent:   Update,
		Keywords: []string{"mark", "complete", "done", "finish", "update"},
		Refine:   refineUpdate,
	},
	{
		Name:     "delete",
		Intent:   Delete,
		Keywords: []string{"delete", "remove", "cancel"},
	},
}

func refineList(text string, d *Decision) {
	switch {
	case strings.Contains(text, "high priority"), strings.Contains(text, "urgent"):
		p := domain.PriorityHigh
		d.Filter.Priority = &p
	case strings.Contains(text, "completed"):
		s := domain.StatusCompleted
		d.Filter.Status = &s
	case strings.Contains(text, "pending"):
		s := domain.StatusPending
		d.Filter.Status = &s
	}
}

func refineUpdate(text string, d *Decision) {
	if strings.Contains(text, "complete") || strings.Contains(text, "done") {
		s := domain.StatusCompleted
		d.ForceStatus = &s
	}
}

// Rules returns a copy of the table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify evaluates the table against classifier output. The first
// matching rule wins; no match yields Help.
func Classify(classifierOutput string) Decision {
	text := strings.ToLower(classifierOutput)
	for _, r := range rules {
		if !r.Matches(text) {
			continue
		}
		d := Decision{Intent: r.Intent, Rule: r.Name}
		if r.Refine != nil {
			r.Refine(text, &d)
		}
		return d
	}
	return Decision{Intent: Help, Rule: "fallback"}
}
