package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process LiveStore. It backs STORE_BACKEND=memory for
// local development and is the double the gateway tests run against.
//
// Snapshots are delivered synchronously on the mutating goroutine, outside
// the lock, which matches the single-threaded event model the chat plane
// assumes: one callback at a time, in emission order.
type Memory struct {
	mu       sync.Mutex
	channels map[string]map[string][]byte
	subs     map[string]map[int]SnapshotFunc
	nextSub  int
}

func NewMemory() *Memory {
	return &Memory{
		channels: make(map[string]map[string][]byte),
		subs:     make(map[string]map[int]SnapshotFunc),
	}
}

func (m *Memory) Subscribe(ctx context.Context, channel string, fn SnapshotFunc) (CancelFunc, error) {
	m.mu.Lock()
	if m.subs[channel] == nil {
		m.subs[channel] = make(map[int]SnapshotFunc)
	}
	id := m.nextSub
	m.nextSub++
	m.subs[channel][id] = fn
	snap := m.snapshotLocked(channel)
	m.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[channel], id)
			m.mu.Unlock()
		})
	}, nil
}

func (m *Memory) Read(ctx context.Context, channel string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(channel), nil
}

func (m *Memory) Push(ctx context.Context, channel string, value []byte) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	if m.channels[channel] == nil {
		m.channels[channel] = make(map[string][]byte)
	}
	m.channels[channel][id] = append([]byte(nil), value...)
	m.mu.Unlock()

	m.broadcast(channel)
	return id, nil
}

func (m *Memory) Merge(ctx context.Context, channel, id string, apply MergeFunc) error {
	m.mu.Lock()
	old, ok := m.channels[channel][id]
	if !ok || len(old) == 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	next, err := apply(old)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.channels[channel][id] = next
	m.mu.Unlock()

	m.broadcast(channel)
	return nil
}

func (m *Memory) Tombstone(ctx context.Context, channel, id string) error {
	m.mu.Lock()
	if _, ok := m.channels[channel][id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.channels[channel][id] = nil
	m.mu.Unlock()

	m.broadcast(channel)
	return nil
}

// snapshotLocked copies the channel's records. Callers hold m.mu.
func (m *Memory) snapshotLocked(channel string) Snapshot {
	records := m.channels[channel]
	snap := make(Snapshot, 0, len(records))
	for id, value := range records {
		snap = append(snap, Record{ID: id, Value: append([]byte(nil), value...)})
	}
	return snap
}

func (m *Memory) broadcast(channel string) {
	m.mu.Lock()
	snap := m.snapshotLocked(channel)
	fns := make([]SnapshotFunc, 0, len(m.subs[channel]))
	for _, fn := range m.subs[channel] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
