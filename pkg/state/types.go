package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	taskcore "github.com/goliatone/go-taskcore"
)

var ErrNotFound = errors.New("state: record not found")

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted item.
type Ref struct {
	Kind taskcore.Kind
	ID   string
}

// RefOf returns the reference of item.
func RefOf(item taskcore.Item) Ref {
	return Ref{Kind: item.Kind(), ID: item.ID()}
}

// Identifier returns the canonical storage key, "<kind>/<id>".
func (r Ref) Identifier() (string, error) {
	if r.Kind == "" {
		return "", fmt.Errorf("state: ref kind is required")
	}
	if r.ID == "" {
		return "", fmt.Errorf("state: ref id is required for kind %q", r.Kind)
	}
	return fmt.Sprintf("%s/%s", r.Kind, r.ID), nil
}

// Meta is storage-owned metadata used for concurrency control and to rebuild
// the hierarchy.
type Meta struct {
	ETag      string            `json:"etag,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
	ParentID  string            `json:"parent_id,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Entry is one listed record.
type Entry[T any] struct {
	Ref      Ref
	Snapshot T
	Meta     Meta
}

// Store persists one snapshot per Ref.
//
// Save and Delete treat a non-empty meta.ETag as the version the caller last
// saw and fail with ErrETagMismatch when the stored version differs. Save
// returns the metadata of the new version. Delete of a missing record fails
// with ErrNotFound. List returns the records of kind ordered by id.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
	Delete(ctx context.Context, ref Ref, meta Meta) error
	List(ctx context.Context, kind taskcore.Kind) ([]Entry[T], error)
}

// CheckETag reports ErrETagMismatch when expected is set and differs from
// current. Stores share it so they agree on the rule.
func CheckETag(expected, current string) error {
	if expected != "" && current != "" && expected != current {
		return fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected, current)
	}
	return nil
}

// CloneMeta returns a copy of meta that shares no maps with it.
func CloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
