// Package store abstracts the live message store: a channel-keyed
// collection of opaque records with full-snapshot subscriptions.
//
// The primitives mirror what a managed real-time database exposes:
// subscribe (snapshot callback on every change), read-once, push (append
// with a generated id), field-level merge, and tombstone (clear the value,
// keep the slot). The chat gateway is the only consumer.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Merge when the record does not exist or has
// been tombstoned.
var ErrNotFound = errors.New("store: record not found")

// Record is one slot in a channel's collection. An empty Value is a
// tombstone: the slot exists but the record was deleted.
type Record struct {
	ID    string
	Value []byte
}

// Snapshot is the full current contents of a channel's collection,
// delivered in no particular order.
type Snapshot []Record

// SnapshotFunc receives the full snapshot on every change.
type SnapshotFunc func(Snapshot)

// CancelFunc detaches a subscription. Safe to call more than once; after
// the first call no further snapshots are delivered.
type CancelFunc func()

// MergeFunc transforms a record's current value into its new value.
// It must only touch the fields it owns — the store applies it inside a
// read-modify-write that protects against concurrent whole-record
// clobbering.
type MergeFunc func(old []byte) ([]byte, error)

// LiveStore is the set of primitives the chat plane is built on.
type LiveStore interface {
	// Subscribe attaches fn to channel. fn is invoked once with the
	// current snapshot, then again on every subsequent change.
	Subscribe(ctx context.Context, channel string, fn SnapshotFunc) (CancelFunc, error)

	// Read returns the current snapshot without subscribing.
	Read(ctx context.Context, channel string) (Snapshot, error)

	// Push appends a record with a store-generated id and returns that id.
	// Resolving means the write is durably queued, not that other
	// subscribers have observed it.
	Push(ctx context.Context, channel string, value []byte) (string, error)

	// Merge applies a field-level read-modify-write to one record.
	// Returns ErrNotFound for missing or tombstoned records.
	Merge(ctx context.Context, channel, id string, apply MergeFunc) error

	// Tombstone clears a record's value but keeps its slot, so
	// subscribers observe a deletion distinct from "never existed".
	Tombstone(ctx context.Context, channel, id string) error
}
