package activity

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultChannel is stamped on events that carry no channel.
const DefaultChannel = "taskcore"

// Config holds the emission defaults.
type Config struct {
	Enabled bool
	Channel string
	// ActorID and TenantID fill events that do not name their own, which is
	// the case for everything the Bridge produces.
	ActorID  string
	TenantID string
	Logger   zerolog.Logger
}

// Emitter applies Config defaults and forwards events to hooks.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	actor   string
	tenant  string
	logger  zerolog.Logger
}

func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	kept := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			kept = append(kept, hook)
		}
	}
	return &Emitter{
		hooks:   kept,
		enabled: cfg.Enabled && len(kept) > 0,
		channel: channel,
		actor:   strings.TrimSpace(cfg.ActorID),
		tenant:  strings.TrimSpace(cfg.TenantID),
		logger:  cfg.Logger,
	}
}

// Enabled reports whether Emit does anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Emit forwards event to the hooks. A failing hook is logged and its error
// returned; the other hooks still receive the event.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" {
		event.ActorID = e.actor
	}
	if strings.TrimSpace(event.TenantID) == "" {
		event.TenantID = e.tenant
	}
	err := e.hooks.Notify(ctx, event)
	if err != nil {
		e.logger.Warn().Err(err).Str("verb", event.Verb).Str("object_id", event.ObjectID).Msg("activity hook failed")
	}
	return err
}
