// Package testfixtures provides in-memory stand-ins for the PostgreSQL
// repositories and the transaction manager, used by usecase and service tests.
package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

type txKey struct{}

// Store holds the shared state behind Schedules, Slots and Appointments.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	state state

	failMu   sync.Mutex
	failures map[string]error
}

type state struct {
	configs      map[int64]*domain.ScheduleConfiguration
	slots        map[int64]*domain.Slot
	appointments map[int64]*domain.Appointment
	nextSlotID   int64
	nextApptID   int64
}

func NewStore() *Store {
	return &Store{
		state: state{
			configs:      make(map[int64]*domain.ScheduleConfiguration),
			slots:        make(map[int64]*domain.Slot),
			appointments: make(map[int64]*domain.Appointment),
		},
		failures: make(map[string]error),
	}
}

func (s *Store) Schedules() *Schedules       { return &Schedules{s: s} }
func (s *Store) Slots() *Slots               { return &Slots{s: s} }
func (s *Store) Appointments() *Appointments { return &Appointments{s: s} }
func (s *Store) TxManager() *TxManager       { return &TxManager{s: s} }

// FailOn makes every later call of op ("Appointments.Create", ...) return err.
// A nil err clears the failure.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

// AllSlots returns copies of every stored slot ordered by date and time.
func (s *Store) AllSlots() []*domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Slot, 0, len(s.state.slots))
	for _, slot := range s.state.slots {
		out = append(out, copySlot(slot))
	}
	sortSlots(out)
	return out
}

// AllAppointments returns copies of every stored appointment ordered by id.
func (s *Store) AllAppointments() []*domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Appointment, 0, len(s.state.appointments))
	for id := int64(1); id <= s.state.nextApptID; id++ {
		if a, ok := s.state.appointments[id]; ok {
			out = append(out, copyAppointment(a))
		}
	}
	return out
}

// DeleteSlot removes a slot regardless of its state, simulating manual cleanup.
func (s *Store) DeleteSlot(key domain.SlotKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot := s.findSlot(key); slot != nil {
		delete(s.state.slots, slot.ID)
	}
}

func (s *Store) findSlot(key domain.SlotKey) *domain.Slot {
	day := domain.DateOnly(key.Date)
	for _, slot := range s.state.slots {
		if slot.FacilityID == key.FacilityID && slot.Date.Equal(day) && slot.Time == key.Time {
			return slot
		}
	}
	return nil
}

func (s *Store) snapshot() state {
	snap := state{
		configs:      make(map[int64]*domain.ScheduleConfiguration, len(s.state.configs)),
		slots:        make(map[int64]*domain.Slot, len(s.state.slots)),
		appointments: make(map[int64]*domain.Appointment, len(s.state.appointments)),
		nextSlotID:   s.state.nextSlotID,
		nextApptID:   s.state.nextApptID,
	}
	for id, c := range s.state.configs {
		snap.configs[id] = copyConfig(c)
	}
	for id, slot := range s.state.slots {
		snap.slots[id] = copySlot(slot)
	}
	for id, a := range s.state.appointments {
		snap.appointments[id] = copyAppointment(a)
	}
	return snap
}

// TxManager serializes transactions and restores the pre-transaction state when fn fails.
type TxManager struct {
	s *Store
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	m.s.mu.Lock()
	snap := m.s.snapshot()
	m.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.mu.Lock()
		m.s.state = snap
		m.s.mu.Unlock()
		return err
	}
	return nil
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
