// Package state persists taskcore items and keeps a collection in step with a
// store.
//
// Responsibilities:
//   - Store[T] loads, saves, deletes and lists snapshots addressed by Ref.
//     Meta.ETag carries optimistic concurrency: a save or delete that names an
//     ETag fails with ErrETagMismatch when the stored record moved on.
//   - Codec turns a taskcore.State into bytes and back for stores that keep
//     blobs (see the sqlitestore subpackage).
//   - Tracker observes a publisher and marks changed items dirty, stamping
//     their modification time.
//   - Syncer pushes pending items to a store and pulls stored records into a
//     collection.
//
// Data flow:
//
//	Publisher -> Tracker -> item status
//	Collection -> Syncer.Push -> Store
//	Store -> Syncer.Pull -> Collection
//
// The hierarchy is not part of taskcore.State; Syncer records each item's
// parent in Meta.ParentID and relinks composites on Pull.
package state
