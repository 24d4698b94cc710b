package testfixtures

import (
	"sort"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
)

func copyConfig(c *domain.ScheduleConfiguration) *domain.ScheduleConfiguration {
	out := *c
	out.SpecialDates = append([]domain.SpecialDate(nil), c.SpecialDates...)
	out.TimeSlotTemplate = append([]domain.TemplateEntry(nil), c.TimeSlotTemplate...)
	if c.DefaultEmployeeID != nil {
		id := *c.DefaultEmployeeID
		out.DefaultEmployeeID = &id
	}
	return &out
}

func copySlot(s *domain.Slot) *domain.Slot {
	out := *s
	if s.EmployeeID != nil {
		id := *s.EmployeeID
		out.EmployeeID = &id
	}
	if s.AppointmentID != nil {
		id := *s.AppointmentID
		out.AppointmentID = &id
	}
	return &out
}

func copyAppointment(a *domain.Appointment) *domain.Appointment {
	out := *a
	if a.EmployeeID != nil {
		id := *a.EmployeeID
		out.EmployeeID = &id
	}
	if a.Notes != nil {
		notes := *a.Notes
		out.Notes = &notes
	}
	return &out
}

func sortSlots(slots []*domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].Time.IsBefore(slots[j].Time)
	})
}
