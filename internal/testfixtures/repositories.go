package testfixtures

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-PoolScheduleService/internal/infra/storage/slot"
)

// Schedules mirrors schedule.Repository.
type Schedules struct {
	s *Store
}

func (r *Schedules) Get(_ context.Context, facilityID int64) (*domain.ScheduleConfiguration, error) {
	if err := r.s.failure("Schedules.Get"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cfg, ok := r.s.state.configs[facilityID]
	if !ok {
		return nil, schedule.ErrConfigNotFound
	}
	return copyConfig(cfg), nil
}

func (r *Schedules) Save(_ context.Context, cfg *domain.ScheduleConfiguration) (*domain.ScheduleConfiguration, error) {
	if err := r.s.failure("Schedules.Save"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	stored := copyConfig(cfg)
	if prev, ok := r.s.state.configs[cfg.FacilityID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.SortSpecialDates()
	r.s.state.configs[cfg.FacilityID] = stored

	cfg.CreatedAt = stored.CreatedAt
	cfg.UpdatedAt = stored.UpdatedAt
	return cfg, nil
}

func (r *Schedules) AddSpecialDate(_ context.Context, facilityID int64, sd domain.SpecialDate) error {
	if err := r.s.failure("Schedules.AddSpecialDate"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cfg, ok := r.s.state.configs[facilityID]
	if !ok {
		return schedule.ErrConfigNotFound
	}
	if cfg.HasSpecialDate(sd.Date) {
		return schedule.ErrDuplicateSpecialDate
	}
	sd.Date = domain.DateOnly(sd.Date)
	cfg.SpecialDates = append(cfg.SpecialDates, sd)
	cfg.SortSpecialDates()
	cfg.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Schedules) RemoveSpecialDate(_ context.Context, facilityID int64, date time.Time) error {
	if err := r.s.failure("Schedules.RemoveSpecialDate"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cfg, ok := r.s.state.configs[facilityID]
	if !ok {
		return schedule.ErrSpecialDateNotFound
	}
	day := domain.DateOnly(date)
	for i, sd := range cfg.SpecialDates {
		if domain.DateOnly(sd.Date).Equal(day) {
			cfg.SpecialDates = append(cfg.SpecialDates[:i], cfg.SpecialDates[i+1:]...)
			cfg.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return schedule.ErrSpecialDateNotFound
}

// Slots mirrors slot.Repository.
type Slots struct {
	s *Store
}

func (r *Slots) GetByKey(_ context.Context, key domain.SlotKey) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := r.s.findSlot(key)
	if found == nil {
		return nil, slot.ErrSlotNotFound
	}
	return copySlot(found), nil
}

func (r *Slots) ListByRange(_ context.Context, facilityID int64, start, end time.Time) ([]*domain.Slot, error) {
	if err := r.s.failure("Slots.ListByRange"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	from, to := domain.DateOnly(start), domain.DateOnly(end)
	out := make([]*domain.Slot, 0)
	for _, sl := range r.s.state.slots {
		if sl.FacilityID == facilityID && !sl.Date.Before(from) && !sl.Date.After(to) {
			out = append(out, copySlot(sl))
		}
	}
	sortSlots(out)
	return out, nil
}

func (r *Slots) ListAvailable(_ context.Context, facilityID int64, date *time.Time, from time.Time) ([]*domain.Slot, error) {
	if err := r.s.failure("Slots.ListAvailable"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Slot, 0)
	for _, sl := range r.s.state.slots {
		if sl.FacilityID != facilityID || sl.IsBooked {
			continue
		}
		if date != nil && !sl.Date.Equal(domain.DateOnly(*date)) {
			continue
		}
		if date == nil && !from.IsZero() && sl.Date.Before(domain.DateOnly(from)) {
			continue
		}
		out = append(out, copySlot(sl))
	}
	sortSlots(out)
	return out, nil
}

func (r *Slots) CreateBatch(_ context.Context, slots []*domain.Slot) (int, error) {
	if err := r.s.failure("Slots.CreateBatch"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	created := 0
	now := time.Now().UTC()
	for _, sl := range slots {
		if r.s.findSlot(sl.Key()) != nil {
			continue
		}
		r.s.state.nextSlotID++
		stored := copySlot(sl)
		stored.ID = r.s.state.nextSlotID
		stored.Date = domain.DateOnly(sl.Date)
		stored.IsBooked = false
		stored.AppointmentID = nil
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.s.state.slots[stored.ID] = stored
		created++
	}
	return created, nil
}

func (r *Slots) DeleteUnbooked(_ context.Context, ids []int64) (int, error) {
	if err := r.s.failure("Slots.DeleteUnbooked"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if sl, ok := r.s.state.slots[id]; ok && !sl.IsBooked {
			delete(r.s.state.slots, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *Slots) TryBook(_ context.Context, key domain.SlotKey) (*domain.Slot, error) {
	if err := r.s.failure("Slots.TryBook"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := r.s.findSlot(key)
	if found == nil {
		return nil, slot.ErrSlotNotFound
	}
	if found.IsBooked {
		return nil, slot.ErrSlotAlreadyBooked
	}
	found.IsBooked = true
	found.UpdatedAt = time.Now().UTC()
	return copySlot(found), nil
}

func (r *Slots) AttachAppointment(_ context.Context, slotID, appointmentID int64) error {
	if err := r.s.failure("Slots.AttachAppointment"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sl, ok := r.s.state.slots[slotID]
	if !ok || !sl.IsBooked {
		return slot.ErrSlotNotFound
	}
	sl.AppointmentID = &appointmentID
	return nil
}

func (r *Slots) Release(_ context.Context, key domain.SlotKey, appointmentID int64) (bool, error) {
	if err := r.s.failure("Slots.Release"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	found := r.s.findSlot(key)
	if found == nil || found.AppointmentID == nil || *found.AppointmentID != appointmentID {
		return false, nil
	}
	found.IsBooked = false
	found.AppointmentID = nil
	found.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Appointments mirrors appointment.Repository.
type Appointments struct {
	s *Store
}

func (r *Appointments) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if err := r.s.failure("Appointments.Create"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.state.nextApptID++
	now := time.Now().UTC()
	a.ID = r.s.state.nextApptID
	a.Date = domain.DateOnly(a.Date)
	a.CreatedAt = now
	a.UpdatedAt = now
	r.s.state.appointments[a.ID] = copyAppointment(a)
	return a, nil
}

func (r *Appointments) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	if err := r.s.failure("Appointments.GetByID"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.state.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return copyAppointment(a), nil
}

func (r *Appointments) List(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	day := domain.DateOnly(filter.Date)
	out := make([]*domain.Appointment, 0)
	for _, a := range r.s.state.appointments {
		if !a.Date.Equal(day) {
			continue
		}
		if filter.FacilityID != nil && a.FacilityID != *filter.FacilityID {
			continue
		}
		if a.IsCanceled && !filter.IncludeCanceled {
			continue
		}
		out = append(out, copyAppointment(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time.IsBefore(out[j].Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Appointments) Cancel(_ context.Context, id int64) error {
	if err := r.s.failure("Appointments.Cancel"); err != nil {
		return err
	}
	return r.update(id, func(a *domain.Appointment) bool {
		if a.IsCanceled {
			return false
		}
		a.IsCanceled = true
		return true
	})
}

func (r *Appointments) Confirm(_ context.Context, id int64) error {
	return r.update(id, func(a *domain.Appointment) bool {
		if a.IsCanceled {
			return false
		}
		a.IsConfirmed = true
		return true
	})
}

func (r *Appointments) MarkNoShow(_ context.Context, date time.Time) (int, error) {
	if err := r.s.failure("Appointments.MarkNoShow"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	day := domain.DateOnly(date)
	marked := 0
	for _, a := range r.s.state.appointments {
		if a.Date.Equal(day) && !a.IsCanceled && !a.IsConfirmed && !a.IsNoShow {
			a.IsNoShow = true
			a.UpdatedAt = time.Now().UTC()
			marked++
		}
	}
	return marked, nil
}

func (r *Appointments) update(id int64, apply func(a *domain.Appointment) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.state.appointments[id]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	if !apply(a) {
		return appointment.ErrStateConflict
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}
