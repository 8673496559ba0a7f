package engine

import (
	"time"

	"github.com/agentstation/syncbridge/pkg/errors"
	"github.com/agentstation/syncbridge/pkg/reconcile"
	"github.com/agentstation/syncbridge/pkg/trackers"
	"github.com/agentstation/syncbridge/pkg/translate"
)

// ProjectMapping pairs a local project id with the remote project it
// reconciles against.
type ProjectMapping struct {
	LocalID int    `yaml:"local_id"`
	Remote  string `yaml:"remote"`
}

// Options controls a sync engine instance. An Engine is configured once
// and may run many passes.
type Options struct {
	// OnlyKind restricts the run to one artifact kind; empty means both.
	OnlyKind trackers.Kind

	// AutoMapUsers creates user correlations automatically when both
	// systems carry the same login.
	AutoMapUsers bool

	// ClockOffset compensates for the remote system's clock disagreeing
	// with the local one. Applied to remote timestamps only.
	ClockOffset time.Duration

	// GuardWindow absorbs clock imprecision in conflict resolution.
	GuardWindow time.Duration

	// Projects lists the project pairs to reconcile.
	Projects []ProjectMapping

	// IncidentType and TaskType are the remote item types the two local
	// artifact kinds correspond to.
	IncidentType string
	TaskType     string

	// Special holds the remote names of the structural target fields.
	Special translate.SpecialFields

	// PriorityField is the remote priority field's reference name, which
	// varies across remote process templates.
	PriorityField string

	// Properties maps local custom property slots to remote fields.
	Properties *translate.PropertyMap

	// PollInterval and PollBudget bound the container visibility poll.
	PollInterval time.Duration
	PollBudget   time.Duration
}

// Defaults returns the default engine options.
func Defaults() *Options {
	return &Options{
		GuardWindow:   reconcile.DefaultGuardWindow,
		IncidentType:  "Bug",
		TaskType:      "Task",
		Special:       translate.DefaultSpecialFields(),
		PriorityField: trackers.FieldPriority,
		Properties:    translate.NewPropertyMap(nil),
		PollInterval:  500 * time.Millisecond,
		PollBudget:    30 * time.Second,
	}
}

// Option is a function that configures engine Options.
type Option func(*Options)

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	if len(o.Projects) == 0 {
		return errors.NewValidationError("Projects", nil, "at least one project mapping is required")
	}
	if o.OnlyKind != "" && o.OnlyKind != trackers.KindIncident && o.OnlyKind != trackers.KindTask {
		return errors.NewValidationError("OnlyKind", o.OnlyKind, "must be incidents, tasks, or empty")
	}
	if o.GuardWindow < 0 {
		return errors.NewValidationError("GuardWindow", o.GuardWindow, "must be non-negative")
	}
	if o.PollBudget <= 0 {
		return errors.NewValidationError("PollBudget", o.PollBudget, "must be positive")
	}
	return nil
}

// WithOnlyKind restricts the run to one artifact kind.
func WithOnlyKind(kind trackers.Kind) Option {
	return func(o *Options) { o.OnlyKind = kind }
}

// WithAutoMapUsers configures automatic user mapping by identical login.
func WithAutoMapUsers(enabled bool) Option {
	return func(o *Options) { o.AutoMapUsers = enabled }
}

// WithClockOffsetHours configures the remote clock offset in whole hours.
func WithClockOffsetHours(hours int) Option {
	return func(o *Options) { o.ClockOffset = time.Duration(hours) * time.Hour }
}

// WithGuardWindow configures the conflict-resolution guard window.
func WithGuardWindow(d time.Duration) Option {
	return func(o *Options) { o.GuardWindow = d }
}

// WithProjects configures the project pairs to reconcile.
func WithProjects(projects ...ProjectMapping) Option {
	return func(o *Options) { o.Projects = projects }
}

// WithItemTypes configures the remote item types for the two kinds.
func WithItemTypes(incident, task string) Option {
	return func(o *Options) {
		if incident != "" {
			o.IncidentType = incident
		}
		if task != "" {
			o.TaskType = task
		}
	}
}

// WithSpecialFields overrides the remote names of the five special target
// fields. Empty strings keep the defaults.
func WithSpecialFields(rank, triage, area, discipline, priority string) Option {
	return func(o *Options) {
		if rank != "" {
			o.Special.Rank = rank
		}
		if triage != "" {
			o.Special.Triage = triage
		}
		if area != "" {
			o.Special.Area = area
		}
		if discipline != "" {
			o.Special.Discipline = discipline
		}
		if priority != "" {
			o.PriorityField = priority
		}
	}
}

// WithProperties configures the custom property map.
func WithProperties(pm *translate.PropertyMap) Option {
	return func(o *Options) {
		if pm != nil {
			o.Properties = pm
		}
	}
}

// WithPoll configures the container visibility poll.
func WithPoll(interval, budget time.Duration) Option {
	return func(o *Options) {
		if interval > 0 {
			o.PollInterval = interval
		}
		if budget > 0 {
			o.PollBudget = budget
		}
	}
}
