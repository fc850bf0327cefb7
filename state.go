package taskcore

import (
	"fmt"
	"time"

	"github.com/goliatone/go-taskcore/internal/hydrate"
)

// State keys, in the order GetState documents them.
const (
	StateKeySubject              = "subject"
	StateKeyDescription          = "description"
	StateKeyID                   = "id"
	StateKeyStatus               = "status"
	StateKeyForegroundColor      = "fgColor"
	StateKeyBackgroundColor      = "bgColor"
	StateKeyFont                 = "font"
	StateKeyIcon                 = "icon"
	StateKeySelectedIcon         = "selectedIcon"
	StateKeyCreationDateTime     = "creationDateTime"
	StateKeyModificationDateTime = "modificationDateTime"
	StateKeyOrdering             = "ordering"
)

// StateKeys lists the exact key set of a persisted state.
func StateKeys() []string {
	return []string{
		StateKeySubject,
		StateKeyDescription,
		StateKeyID,
		StateKeyStatus,
		StateKeyForegroundColor,
		StateKeyBackgroundColor,
		StateKeyFont,
		StateKeyIcon,
		StateKeySelectedIcon,
		StateKeyCreationDateTime,
		StateKeyModificationDateTime,
		StateKeyOrdering,
	}
}

// State is the persistence record of an object. It holds exactly the keys
// listed by StateKeys; hierarchy and expansion are not part of it.
type State struct {
	Subject              string    `json:"subject"`
	Description          string    `json:"description"`
	ID                   string    `json:"id"`
	Status               Status    `json:"status"`
	ForegroundColor      *Color    `json:"fgColor"`
	BackgroundColor      *Color    `json:"bgColor"`
	Font                 *Font     `json:"font"`
	Icon                 string    `json:"icon"`
	SelectedIcon         string    `json:"selectedIcon"`
	CreationDateTime     time.Time `json:"creationDateTime"`
	ModificationDateTime time.Time `json:"modificationDateTime"`
	Ordering             int       `json:"ordering"`
}

// Map returns the state as a dictionary keyed by StateKeys. Unset colors and
// fonts map to nil.
func (s State) Map() map[string]any {
	out := map[string]any{
		StateKeySubject:              s.Subject,
		StateKeyDescription:          s.Description,
		StateKeyID:                   s.ID,
		StateKeyStatus:               s.Status,
		StateKeyForegroundColor:      nil,
		StateKeyBackgroundColor:      nil,
		StateKeyFont:                 nil,
		StateKeyIcon:                 s.Icon,
		StateKeySelectedIcon:         s.SelectedIcon,
		StateKeyCreationDateTime:     s.CreationDateTime,
		StateKeyModificationDateTime: s.ModificationDateTime,
		StateKeyOrdering:             s.Ordering,
	}
	if s.ForegroundColor != nil {
		out[StateKeyForegroundColor] = cloneColor(s.ForegroundColor)
	}
	if s.BackgroundColor != nil {
		out[StateKeyBackgroundColor] = cloneColor(s.BackgroundColor)
	}
	if s.Font != nil {
		out[StateKeyFont] = cloneFont(s.Font)
	}
	return out
}

var stateDecoder = hydrate.NewDecoder[State](
	hydrate.WithDisallowUnknownFields[State](),
	hydrate.WithPreHook[State](normalizeStatePayload),
	hydrate.WithPostHook[State](validateState),
)

// StateFromMap parses a dictionary produced by Map, or decoded from JSON,
// back into a State. Status accepts ordinals or names; times accept RFC 3339
// strings or unix seconds; colors accept [r, g, b(, a)] arrays. Keys outside
// StateKeys are rejected.
func StateFromMap(payload map[string]any) (State, error) {
	id, _ := payload[StateKeyID].(string)
	st, err := stateDecoder.Decode(hydrate.Context{ID: id, Kind: "state"}, payload)
	if err != nil {
		return State{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return st, nil
}

func normalizeStatePayload(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	if name, ok := payload[StateKeyStatus].(string); ok {
		status, err := ParseStatus(name)
		if err != nil {
			return nil, err
		}
		payload[StateKeyStatus] = int(status)
	}
	for _, key := range []string{StateKeyCreationDateTime, StateKeyModificationDateTime} {
		if seconds, ok := payload[key].(float64); ok {
			whole := int64(seconds)
			nanos := int64((seconds - float64(whole)) * float64(time.Second))
			payload[key] = time.Unix(whole, nanos).UTC().Format(time.RFC3339Nano)
		}
	}
	return payload, nil
}

func validateState(_ hydrate.Context, st *State) error {
	if !st.Status.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownStatus, int(st.Status))
	}
	return nil
}

// GetState snapshots the object for persistence or undo.
func (o *Object) GetState() State {
	return State{
		Subject:              o.subject,
		Description:          o.description,
		ID:                   o.id,
		Status:               o.status,
		ForegroundColor:      cloneColor(o.fg),
		BackgroundColor:      cloneColor(o.bg),
		Font:                 cloneFont(o.font),
		Icon:                 o.icon,
		SelectedIcon:         o.selectedIcon,
		CreationDateTime:     o.created,
		ModificationDateTime: o.modified,
		Ordering:             o.ordering,
	}
}

// SetState restores st in one step. All resulting notifications travel in a
// single event: one entry per changed attribute and one status entry when the
// status differs. Unchanged fields add nothing. The id is immutable; a state
// carrying a different id only has its other fields applied.
func (o *Object) SetState(st State) {
	if st.ID != "" && st.ID != o.id {
		o.logger.Warn().
			Str("id", o.id).
			Str("state_id", st.ID).
			Msg("state id differs from object id, keeping object id")
	}
	ev := &Event{}
	o.setSubject(ev, st.Subject)
	o.setDescription(ev, st.Description)
	appearance := Appearance{
		ForegroundColor: st.ForegroundColor,
		BackgroundColor: st.BackgroundColor,
		Font:            st.Font,
		Icon:            st.Icon,
		SelectedIcon:    st.SelectedIcon,
	}
	if o.assignAppearance(appearance) {
		o.emitChange(ev, ChangeAppearance)
	}
	o.setOrdering(ev, st.Ordering)
	o.created = st.CreationDateTime
	o.modified = st.ModificationDateTime
	o.restoreStatus(ev, st.Status)
	o.notify(ev)
}
