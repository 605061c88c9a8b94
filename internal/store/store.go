// Package store implements the network-backed entity stores: one in-memory
// ordered collection per entity type, reconciled against the server's
// returned representation after every successful mutation.
package store

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"findash/internal/api"
	"findash/internal/events"
	"findash/internal/log"
)

// Entity is any record the generic store can reconcile by id.
type Entity interface {
	EntityID() int64
}

// Validator is implemented by input payloads that carry boundary
// invariants. Validation failures never reach the network.
type Validator interface {
	Validate() error
}

// Publisher is the slice of the events client the store needs. A nil
// publisher disables mutation events.
type Publisher interface {
	PublishMutation(ctx context.Context, entity string, action events.Action, id int64) error
}

// Op identifies an operation category. Each category carries its own
// busy flag and error slot so a delete in progress does not block a read.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// MutationState tracks one in-flight mutation so races are detectable
// instead of silently overwritten.
type MutationState string

const (
	MutationPending MutationState = "pending"
	MutationApplied MutationState = "applied"
	MutationFailed  MutationState = "failed"
)

// MutationRecord is one entry of the store's recent-mutation journal.
type MutationRecord struct {
	Op    Op
	ID    int64
	State MutationState
	Err   string

	// seq identifies the record across journal evictions; positional
	// indexes shift when the ring slides.
	seq uint64
}

const journalSize = 32

type Store[T Entity] struct {
	mu   sync.Mutex
	name string
	path string
	gw   *api.Client
	pub  Publisher
	log  *log.Logger

	items       []T
	count       int
	hasNext     bool
	hasPrevious bool
	lastFilters url.Values

	busy       map[Op]bool
	errs       map[Op]string
	journal    []MutationRecord
	journalSeq uint64

	// sortAfterWrite reorders the collection after create/update; nil
	// keeps insertion order.
	sortAfterWrite func([]T)
}

func New[T Entity](name, path string, gw *api.Client, pub Publisher, logger *log.Logger) *Store[T] {
	return &Store[T]{
		name: name,
		path: path,
		gw:   gw,
		pub:  pub,
		log:  logger.WithComponent(name + "-store"),
		busy: make(map[Op]bool),
		errs: make(map[Op]string),
	}
}

// Items returns a copy of the local collection.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Count is the server-reported total from the last FetchAll; for flat
// responses it equals the collection length.
func (s *Store[T]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Store[T]) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasNext
}

func (s *Store[T]) HasPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPrevious
}

// Busy reports whether an operation of the given category is in flight.
func (s *Store[T]) Busy(op Op) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[op]
}

// Err returns the error slot of an operation category; empty when the
// last operation of that category succeeded. A new operation clears the
// previous error before starting.
func (s *Store[T]) Err(op Op) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[op]
}

// RecentMutations returns the journal of the most recent mutations,
// oldest first.
func (s *Store[T]) RecentMutations() []MutationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MutationRecord(nil), s.journal...)
}

func (s *Store[T]) begin(op Op) {
	s.mu.Lock()
	s.busy[op] = true
	s.errs[op] = ""
	s.mu.Unlock()
}

func (s *Store[T]) finish(op Op, err error) {
	s.mu.Lock()
	s.busy[op] = false
	if err != nil {
		s.errs[op] = err.Error()
	}
	s.mu.Unlock()
}

func (s *Store[T]) journalAdd(rec MutationRecord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalSeq++
	rec.seq = s.journalSeq
	if len(s.journal) >= journalSize {
		s.journal = s.journal[1:]
	}
	s.journal = append(s.journal, rec)
	return rec.seq
}

// journalSettle resolves a pending record by its sequence number. Settling
// a record the ring has already evicted is a no-op.
func (s *Store[T]) journalSettle(seq uint64, state MutationState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.journal {
		if s.journal[i].seq != seq {
			continue
		}
		s.journal[i].State = state
		if err != nil {
			s.journal[i].Err = err.Error()
		}
		return
	}
}

// FetchAll replaces the local collection with the server's filtered
// result, accepting both flat-list and paginated-envelope responses.
func (s *Store[T]) FetchAll(ctx context.Context, filters url.Values) ([]T, error) {
	s.begin(OpList)

	page, err := api.FetchPage[T](ctx, s.gw, s.path, filters, "failed to load "+s.name+" list")
	if err != nil {
		s.finish(OpList, err)
		return nil, err
	}

	s.mu.Lock()
	s.items = append([]T(nil), page.Items...)
	s.count = page.Count
	s.hasNext = page.HasNext
	s.hasPrevious = page.HasPrevious
	s.lastFilters = cloneValues(filters)
	s.mu.Unlock()

	s.finish(OpList, nil)
	return s.Items(), nil
}

// Refresh re-issues FetchAll with the last-used filter set.
func (s *Store[T]) Refresh(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	filters := cloneValues(s.lastFilters)
	s.mu.Unlock()
	return s.FetchAll(ctx, filters)
}

// Create issues the create call and, on success, puts the server's
// returned record at the head of the collection (or wherever the sort
// policy moves it). The returned error is the sole required failure
// signal; the create error slot is set as well.
func (s *Store[T]) Create(ctx context.Context, input any) (T, error) {
	var zero T

	if v, ok := input.(Validator); ok {
		if err := v.Validate(); err != nil {
			// Boundary violation: reported without a network round-trip.
			s.mu.Lock()
			s.errs[OpCreate] = err.Error()
			s.mu.Unlock()
			return zero, err
		}
	}

	s.begin(OpCreate)
	seq := s.journalAdd(MutationRecord{Op: OpCreate, State: MutationPending})

	created, err := api.Post[T](ctx, s.gw, s.path, input, "failed to create "+s.name)
	if err != nil {
		s.journalSettle(seq, MutationFailed, err)
		s.finish(OpCreate, err)
		return zero, err
	}

	s.mu.Lock()
	s.items = append([]T{created}, s.items...)
	s.count++
	if s.sortAfterWrite != nil {
		s.sortAfterWrite(s.items)
	}
	for i := range s.journal {
		if s.journal[i].seq == seq {
			s.journal[i].ID = created.EntityID()
			break
		}
	}
	s.mu.Unlock()

	s.journalSettle(seq, MutationApplied, nil)
	s.finish(OpCreate, nil)
	s.publish(ctx, events.ActionCreated, created.EntityID())
	return created, nil
}

// Update issues a partial update and replaces the matching local record.
// A server-confirmed update whose id is absent locally surfaces a
// staleness warning and kicks off a background refresh.
func (s *Store[T]) Update(ctx context.Context, id int64, patch any) (T, error) {
	var zero T

	if v, ok := patch.(Validator); ok {
		if err := v.Validate(); err != nil {
			s.mu.Lock()
			s.errs[OpUpdate] = err.Error()
			s.mu.Unlock()
			return zero, err
		}
	}

	s.begin(OpUpdate)
	seq := s.journalAdd(MutationRecord{Op: OpUpdate, ID: id, State: MutationPending})

	updated, err := api.Patch[T](ctx, s.gw, api.EntityPath(s.path, id), patch, "failed to update "+s.name)
	if err != nil {
		s.journalSettle(seq, MutationFailed, err)
		s.finish(OpUpdate, err)
		return zero, err
	}

	s.mu.Lock()
	replaced := false
	for i := range s.items {
		if s.items[i].EntityID() == id {
			s.items[i] = updated
			replaced = true
			break
		}
	}
	if replaced && s.sortAfterWrite != nil {
		s.sortAfterWrite(s.items)
	}
	s.mu.Unlock()

	s.journalSettle(seq, MutationApplied, nil)
	if !replaced {
		s.staleWarning(OpUpdate, id)
	} else {
		s.finish(OpUpdate, nil)
	}
	s.publish(ctx, events.ActionUpdated, id)
	return updated, nil
}

// Delete issues the delete and removes the matching local record. The
// order is call-then-reconcile: a failed delete leaves the collection
// untouched.
func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	s.begin(OpDelete)
	seq := s.journalAdd(MutationRecord{Op: OpDelete, ID: id, State: MutationPending})

	if err := api.Delete(ctx, s.gw, api.EntityPath(s.path, id), "failed to delete "+s.name); err != nil {
		s.journalSettle(seq, MutationFailed, err)
		s.finish(OpDelete, err)
		return err
	}

	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].EntityID() == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed && s.count > 0 {
		s.count--
	}
	s.mu.Unlock()

	s.journalSettle(seq, MutationApplied, nil)
	if !removed {
		s.staleWarning(OpDelete, id)
	} else {
		s.finish(OpDelete, nil)
	}
	s.publish(ctx, events.ActionDeleted, id)
	return nil
}

// staleWarning records the "not found locally" condition and refreshes
// the collection in the background to resynchronize with the server.
func (s *Store[T]) staleWarning(op Op, id int64) {
	err := fmt.Errorf("%s %d not found in the local collection; refreshing", s.name, id)
	s.log.Warn("stale local collection", "op", string(op), "id", id)
	s.finish(op, err)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.log.Error("background refresh failed", "error", err)
		}
	}()
}

func (s *Store[T]) publish(ctx context.Context, action events.Action, id int64) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishMutation(ctx, s.name, action, id); err != nil {
		// Events are advisory; the mutation already succeeded.
		s.log.Warn("failed to publish mutation event", "action", string(action), "id", id, "error", err)
	}
}

func cloneValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
