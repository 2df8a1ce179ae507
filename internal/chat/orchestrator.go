// Package chat runs one natural-language request through extraction,
// classification, and the task executor, and renders the reply text.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"task-assistant/internal/classifier"
	"task-assistant/internal/domain"
	"task-assistant/internal/errors"
	"task-assistant/internal/extract"
	"task-assistant/internal/intent"
	"task-assistant/internal/logging"
	"task-assistant/internal/notify"
	"task-assistant/internal/observability"
	"task-assistant/internal/services"
)

// Fixed reply texts.
const (
	HelpText = "I can help you manage your tasks! You can ask me to create, list, update, or delete tasks. " +
		"For example, try saying 'Create a task to buy milk tomorrow' or 'Show me all high priority tasks'."
	NoTasksText   = "No tasks found matching your criteria."
	listHeader    = "Here are your tasks:\n\n"
	errorPrefix   = "Error: "
	failurePrefix = "I encountered an error: "
)

// Notifier receives an event after every successful mutation.
type Notifier interface {
	Broadcast(ev notify.Event)
}

// Reply is the outcome of one message. Success is false only when the
// pipeline itself failed; operation failures are reported in Response.
type Reply struct {
	Response     string `json:"response"`
	TasksUpdated bool   `json:"tasks_updated"`
	Success      bool   `json:"success"`
	Intent       string `json:"intent,omitempty"`
}

// Orchestrator sequences a single chat request.
type Orchestrator struct {
	tasks      services.TaskService
	classifier classifier.Classifier
	extractor  *extract.Extractor
	notifier   Notifier
	metrics    *observability.Metrics
	logger     *slog.Logger
	now        func() time.Time
	prompt     string
}

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithClock sets the clock for due-date extraction and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithPrompt replaces the prompt sent with every classification call.
func WithPrompt(prompt string) Option {
	return func(o *Orchestrator) { o.prompt = prompt }
}

func New(tasks services.TaskService, cls classifier.Classifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tasks:      tasks,
		classifier: cls,
		logger:     logging.Nop(),
		now:        time.Now,
		prompt:     classifier.SystemPrompt,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.extractor = extract.New(extract.WithClock(o.now))
	return o
}

// Process handles message to completion. It never panics and never
// returns an error; failures are described in the Reply.
func (o *Orchestrator) Process(ctx context.Context, message string) (reply Reply) {
	ctx, span := observability.StartSpan(ctx, observability.SpanChatProcess)
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%v", p)
			logging.FromContext(ctx, o.logger).ErrorContext(ctx, "chat pipeline panicked", "panic", p)
			observability.MarkSpanResult(span, err)
			reply = failed(err.Error())
		}
	}()

	fields := o.extractor.Extract(message)

	out, err := o.classify(ctx, message)
	if err != nil {
		observability.MarkSpanResult(span, err)
		attrs := []any{"error", err}
		if appErr, ok := errors.AsAppError(err); ok {
			attrs = append(attrs, appErr.LogAttrs()...)
		}
		logging.FromContext(ctx, o.logger).ErrorContext(ctx, "classification failed", attrs...)
		return failed(errors.GetUserMessage(err))
	}

	decision := intent.Classify(out)
	span.SetAttributes(
		attribute.String(observability.AttrIntent, decision.Intent.String()),
		attribute.String(observability.AttrRule, decision.Rule),
	)
	o.metrics.IncMessage(decision.Intent.String())
	logging.FromContext(ctx, o.logger).DebugContext(ctx, "intent selected",
		"intent", decision.Intent, "rule", decision.Rule)

	reply = o.dispatch(ctx, decision, fields)
	reply.Intent = decision.Intent.String()
	observability.MarkSpanResult(span, nil)

	if reply.TasksUpdated {
		o.broadcast(ctx)
	}
	return reply
}

func (o *Orchestrator) classify(ctx context.Context, message string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanClassify)
	defer span.End()

	start := time.Now()
	out, err := o.classifier.Classify(ctx, o.prompt, message)
	o.metrics.ObserveClassifier(time.Since(start), err)
	observability.MarkSpanResult(span, err)
	return out, err
}

func (o *Orchestrator) dispatch(ctx context.Context, d intent.Decision, f extract.Fields) Reply {
	ctx, span := observability.StartSpan(ctx, observability.SpanExecute,
		attribute.String(observability.AttrOperation, d.Intent.String()))
	defer span.End()

	var res domain.Result
	switch d.Intent {
	case intent.Create:
		in := services.CreateInput{
			Title:    f.Title,
			DueDate:  f.DueDate,
			Priority: f.Priority.String(),
		}
		if f.Description != "" {
			desc := f.Description
			in.Description = &desc
		}
		res = o.tasks.Create(ctx, in)
	case intent.List:
		if d.Filter.IsZero() {
			res = o.tasks.List(ctx, "")
		} else {
			var in services.FilterInput
			if d.Filter.Priority != nil {
				in.Priority = d.Filter.Priority.String()
			}
			if d.Filter.Status != nil {
				in.Status = d.Filter.Status.String()
			}
			res = o.tasks.Filter(ctx, in)
		}
	case intent.Update:
		var updates services.Updates
		if d.ForceStatus != nil {
			status := d.ForceStatus.String()
			updates.Status = &status
		}
		res = o.tasks.Update(ctx, services.ByTitle(f.Title), updates)
	case intent.Delete:
		res = o.tasks.Delete(ctx, services.ByTitle(f.Title))
	default:
		return Reply{Response: HelpText, Success: true}
	}

	o.metrics.IncOperation(d.Intent.String(), res.Success)
	if !res.Success {
		observability.MarkSpanResult(span, errors.NewValidationError(res.Message, nil))
		return Reply{Response: errorPrefix + res.Message, Success: true}
	}
	observability.MarkSpanResult(span, nil)

	if d.Intent == intent.List {
		return Reply{Response: FormatTasks(res.Tasks), Success: true}
	}
	return Reply{Response: res.Message, TasksUpdated: d.Intent.Mutates(), Success: true}
}

// broadcast notifies without holding up the reply.
func (o *Orchestrator) broadcast(ctx context.Context) {
	if o.notifier == nil {
		return
	}
	ev := notify.NewEvent(notify.EventTasksUpdated, o.now())
	logger := logging.FromContext(ctx, o.logger)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("broadcast panicked", "panic", p)
			}
		}()
		o.notifier.Broadcast(ev)
	}()
}

// FormatTasks renders a task list as bullet lines.
func FormatTasks(tasks []domain.TaskSnapshot) string {
	if len(tasks) == 0 {
		return NoTasksText
	}
	var b strings.Builder
	b.WriteString(listHeader)
	for _, t := range tasks {
		fmt.Fprintf(&b, "• %s (%s priority, %s)\n", t.Title, t.Priority, t.Status)
		if t.Description != nil && *t.Description != "" {
			fmt.Fprintf(&b, "  Description: %s\n", *t.Description)
		}
		if t.DueDate != nil {
			fmt.Fprintf(&b, "  Due: %s\n", *t.DueDate)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func failed(reason string) Reply {
	return Reply{Response: failurePrefix + reason}
}
