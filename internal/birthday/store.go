package birthday

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-lunar-birthday/internal/config"
	"github.com/tartampluch/go-lunar-birthday/internal/host"
)

// Store is the in-memory birthday list, written through to the host storage on
// every mutation. It is safe for concurrent use.
type Store struct {
	caps host.Capabilities

	mu      sync.RWMutex
	records []Record
	// dirty is set while the in-memory list holds changes the host failed to store.
	dirty bool

	now         func() time.Time
	newID       func() string
	defaultDays []int
	failureText string
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithDefaultReminderDays sets the lead days for drafts that do not carry any.
func WithDefaultReminderDays(days []int) Option {
	return func(s *Store) { s.defaultDays = normalizeDays(days) }
}

// WithFailureMessage sets the (localized) toast text shown when storage fails.
func WithFailureMessage(text string) Option {
	return func(s *Store) { s.failureText = text }
}

// NewStore creates a store and loads the persisted list.
func NewStore(ctx context.Context, caps host.Capabilities, opts ...Option) *Store {
	s := &Store{
		caps:        caps,
		now:         time.Now,
		newID:       uuid.NewString,
		defaultDays: normalizeDays(config.DefaultReminderDays),
		failureText: config.MsgOperationFailed,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(ctx)
	return s
}

// Load replaces the in-memory list with the persisted one.
// Any read or decode failure leaves the store empty.
func (s *Store) Load(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompStore)

	records, err := s.read(ctx)
	if err != nil {
		log.ErrorContext(ctx, config.ErrStorageRead, config.LogKeyError, err)
		s.caps.NotifyUser(ctx, s.failureText)
		records = nil
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	log.InfoContext(ctx, config.MsgStoreLoaded, config.LogKeyCount, len(records))
}

func (s *Store) read(ctx context.Context) ([]Record, error) {
	data, err := s.caps.GetStoredList(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ReminderDays == nil {
			records[i].ReminderDays = slices.Clone(s.defaultDays)
		}
	}
	return records, nil
}

// Sync replaces the in-memory list with the persisted one so that writes made
// by another process sharing the storage become visible. A failed read keeps
// the current list.
func (s *Store) Sync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)
}

// syncLocked re-reads the persisted list unless unsaved changes are pending.
// Caller must hold the write lock.
func (s *Store) syncLocked(ctx context.Context) {
	if s.dirty {
		return
	}
	records, err := s.read(ctx)
	if err != nil {
		slog.WarnContext(ctx, config.MsgStoreSyncFailed,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
		return
	}
	s.records = records
}

// persist serializes the full list. Caller must hold the write lock.
// Failures are logged and toasted; the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	records := s.records
	if records == nil {
		records = []Record{}
	}

	data, err := json.Marshal(records)
	if err == nil {
		err = s.caps.PutStoredList(ctx, data)
	}
	if err != nil {
		slog.ErrorContext(ctx, config.ErrStorageWrite,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
		s.caps.NotifyUser(ctx, s.failureText)
		s.dirty = true
		return
	}
	s.dirty = false

	slog.DebugContext(ctx, config.MsgStoreSaved,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCount, len(records),
	)
}

// Add assigns an id and creation time, appends the record to the freshly read
// list and persists it.
func (s *Store) Add(ctx context.Context, d Draft) (Record, error) {
	days := normalizeDays(d.ReminderDays)
	if days == nil {
		days = slices.Clone(s.defaultDays)
	}

	rec := Record{
		ID:           s.newID(),
		Name:         strings.TrimSpace(d.Name),
		LunarMonth:   d.LunarMonth,
		LunarDay:     d.LunarDay,
		UserID:       d.UserID,
		GroupID:      d.GroupID,
		ReminderDays: days,
		Message:      d.Message,
		CreatedAt:    s.now(),
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	s.syncLocked(ctx)
	s.records = append(s.records, rec)
	s.persist(ctx)
	s.mu.Unlock()

	slog.InfoContext(ctx, config.MsgRecordAdded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, rec.ID,
		config.LogKeyName, rec.Name,
	)
	return rec.clone(), nil
}

// Update merges p into the record with the given id. It returns ErrNotFound when
// the id is unknown and a wrapped ErrInvalid when the merged record is invalid.
func (s *Store) Update(ctx context.Context, id string, p Patch) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return Record{}, ErrNotFound
	}

	updated := p.apply(s.records[i])
	if err := updated.Validate(); err != nil {
		return Record{}, err
	}

	s.records[i] = updated
	s.persist(ctx)

	slog.InfoContext(ctx, config.MsgRecordUpdated,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id,
	)
	return updated.clone(), nil
}

// Delete removes the record and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(ctx)

	i := s.indexOf(id)
	if i < 0 {
		return false
	}

	s.records = slices.Delete(s.records, i, i+1)
	s.persist(ctx)

	slog.InfoContext(ctx, config.MsgRecordDeleted,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id,
	)
	return true
}

// List returns copies of all records in insertion order.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.clone()
	}
	return out
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.records[i].clone(), true
	}
	return Record{}, false
}

// FindByLunarDate returns the records recurring on the given lunar month/day.
func (s *Store) FindByLunarDate(month, day int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if r.MatchesLunar(month, day) {
			out = append(out, r.clone())
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r Record) bool { return r.ID == id })
}
