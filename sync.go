package taskcore

// statusTransition moves one object to its next status and records the
// notification it owes, if any, on ev.
type statusTransition func(o *Object, ev *Event)

type statusCascader interface {
	cascadeStatus(ev *Event, t statusTransition)
}

func markDeleted(o *Object, ev *Event) {
	o.setDeleted()
	ev.AddTypedSource(o.kind.EventType(ChangeMarkDeleted), o.self, StatusDeleted)
}

func markNew(o *Object, ev *Event) {
	o.setNew()
	ev.AddTypedSource(o.kind.EventType(ChangeMarkNotDeleted), o.self, StatusNew)
}

func cleanDirty(o *Object, ev *Event) {
	if o.setClean() {
		ev.AddTypedSource(o.kind.EventType(ChangeMarkNotDeleted), o.self, StatusNone)
	}
}

// MarkDeleted moves to StatusDeleted and always notifies markDeleted, even
// when the object was already deleted. Composites cascade to their subtree.
func (o *Object) MarkDeleted() {
	o.applyAndNotify(markDeleted)
}

// MarkNew moves to StatusNew from any state and notifies markNotDeleted.
// Composites cascade to their subtree.
func (o *Object) MarkNew() {
	o.applyAndNotify(markNew)
}

// CleanDirty moves to StatusNone. It notifies markNotDeleted only when the
// previous status was StatusDeleted. Composites cascade to their subtree.
func (o *Object) CleanDirty() {
	o.applyAndNotify(cleanDirty)
}

// MarkDirty moves StatusNone to StatusChanged silently and leaves the other
// states untouched. With force it notifies markNotDeleted carrying the
// resulting status, which lets callers re-propagate a change.
func (o *Object) MarkDirty(force bool) {
	before := o.status
	emit := o.setDirty(force)
	o.logTransition(before)
	if !emit {
		return
	}
	o.notify(NewEvent(o.kind.EventType(ChangeMarkNotDeleted), o.self, o.status))
}

func (o *Object) applyAndNotify(t statusTransition) {
	ev := &Event{}
	o.applyTransition(ev, t)
	o.notify(ev)
}

// applyTransition transitions o, then its subtree depth-first when o is part
// of a composite, recording every notification on the same event.
func (o *Object) applyTransition(ev *Event, t statusTransition) {
	before := o.status
	t(o, ev)
	o.logTransition(before)
	if c, ok := o.self.(statusCascader); ok {
		c.cascadeStatus(ev, t)
	}
}

// restoreStatus sets status directly, as when replaying a saved state, and
// notifies once when it differs.
func (o *Object) restoreStatus(ev *Event, status Status) {
	if o.status == status {
		return
	}
	before := o.status
	o.status = status
	o.logTransition(before)
	if status == StatusDeleted {
		ev.AddTypedSource(o.kind.EventType(ChangeMarkDeleted), o.self, status)
		return
	}
	ev.AddTypedSource(o.kind.EventType(ChangeMarkNotDeleted), o.self, status)
}

func (o *Object) logTransition(before Status) {
	if before == o.status {
		return
	}
	o.logger.Debug().
		Str("kind", string(o.kind)).
		Str("id", o.id).
		Stringer("from", before).
		Stringer("to", o.status).
		Msg("status changed")
}
