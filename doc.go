// Package taskcore provides the synchronizable composite domain objects that
// tasks, notes, categories, attachments and efforts are built on.
//
// An Object carries identity, attributes and a sync status. A Composite adds a
// parent/child hierarchy with recursive attribute resolution, per-context
// expansion state and status cascades. A Collection keeps objects in insertion
// order with an id index. All changes are announced synchronously through a
// Publisher as Events keyed by a per-kind EventType, so subscribers filtering on
// one kind never observe another kind's changes.
//
// Nothing in this package blocks or performs I/O. Persistence lives in
// pkg/state, which reads and writes the State record produced by GetState.
package taskcore
