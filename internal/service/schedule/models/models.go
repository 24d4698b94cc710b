package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// Request models

type WorkHours struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

type SpecialDate struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Reason   string `json:"reason"`
	IsClosed bool   `json:"isClosed"`
}

type TemplateEntry struct {
	Time     types.TimeString `json:"time"`
	IsActive bool             `json:"isActive"`
}

// SaveScheduleRequest replaces the whole configuration of a facility
type SaveScheduleRequest struct {
	FacilityID        int64           `json:"-"`
	ActorID           int64           `json:"-"`
	DayOff            string          `json:"dayOff"`
	WorkHours         WorkHours       `json:"workHours"`
	SpecialDates      []SpecialDate   `json:"specialDates"`
	TimeSlotTemplate  []TemplateEntry `json:"timeSlotTemplate"`
	DefaultEmployeeID *int64          `json:"defaultEmployeeId,omitempty"`
}

// UpdateScheduleRequest changes only the fields that are present
type UpdateScheduleRequest struct {
	FacilityID        int64            `json:"-"`
	ActorID           int64            `json:"-"`
	DayOff            *string          `json:"dayOff,omitempty"`
	WorkHours         *WorkHours       `json:"workHours,omitempty"`
	SpecialDates      *[]SpecialDate   `json:"specialDates,omitempty"`
	TimeSlotTemplate  *[]TemplateEntry `json:"timeSlotTemplate,omitempty"`
	DefaultEmployeeID *int64           `json:"defaultEmployeeId,omitempty"`
}

type AddSpecialDateRequest struct {
	FacilityID int64 `json:"-"`
	ActorID    int64 `json:"-"`
	SpecialDate
}

type RemoveSpecialDateRequest struct {
	FacilityID int64
	ActorID    int64
	Date       string
}

// Response models

type ScheduleResponse struct {
	FacilityID        int64           `json:"facilityId"`
	DayOff            string          `json:"dayOff"`
	WorkHours         WorkHours       `json:"workHours"`
	SpecialDates      []SpecialDate   `json:"specialDates"`
	TimeSlotTemplate  []TemplateEntry `json:"timeSlotTemplate"`
	DefaultEmployeeID *int64          `json:"defaultEmployeeId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`

	// Regeneration is set when the change triggered an automatic slot regeneration
	Regeneration *RegenerationSummary `json:"regeneration,omitempty"`
}

// RegenerationSummary reports what the automatic regeneration changed.
// PreservedBooked lists booked slots the configuration no longer produces.
type RegenerationSummary struct {
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	CreatedCount    int             `json:"createdCount"`
	DeletedCount    int             `json:"deletedCount"`
	PreservedBooked []PreservedSlot `json:"preservedBooked"`
}

type PreservedSlot struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	AppointmentID *int64 `json:"appointmentId,omitempty"`
}

type RemoveSpecialDateResponse struct {
	FacilityID   int64                `json:"facilityId"`
	Date         string               `json:"date"`
	Regeneration *RegenerationSummary `json:"regeneration,omitempty"`
}

// Conversion

func FromDomainSchedule(c *domain.ScheduleConfiguration) *ScheduleResponse {
	if c == nil {
		return nil
	}

	resp := &ScheduleResponse{
		FacilityID:        c.FacilityID,
		DayOff:            c.DayOff.String(),
		WorkHours:         WorkHours{Start: c.WorkHours.Start, End: c.WorkHours.End},
		SpecialDates:      make([]SpecialDate, 0, len(c.SpecialDates)),
		TimeSlotTemplate:  make([]TemplateEntry, 0, len(c.TimeSlotTemplate)),
		DefaultEmployeeID: c.DefaultEmployeeID,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	for _, sd := range c.SpecialDates {
		resp.SpecialDates = append(resp.SpecialDates, SpecialDate{
			Date:     sd.Date.Format(domain.DateFormat),
			Reason:   sd.Reason,
			IsClosed: sd.IsClosed,
		})
	}
	for _, e := range c.TimeSlotTemplate {
		resp.TimeSlotTemplate = append(resp.TimeSlotTemplate, TemplateEntry{Time: e.Time, IsActive: e.IsActive})
	}

	return resp
}

func FromRegeneration(req *generate_slots.Request, resp *generate_slots.Response) *RegenerationSummary {
	out := &RegenerationSummary{
		StartDate:       req.StartDate.Format(domain.DateFormat),
		EndDate:         req.EndDate.Format(domain.DateFormat),
		CreatedCount:    resp.CreatedCount,
		DeletedCount:    resp.DeletedCount,
		PreservedBooked: make([]PreservedSlot, 0, len(resp.PreservedBooked)),
	}
	for _, p := range resp.PreservedBooked {
		out.PreservedBooked = append(out.PreservedBooked, PreservedSlot{
			Date:          p.Date.Format(domain.DateFormat),
			Time:          p.Time.String(),
			AppointmentID: p.AppointmentID,
		})
	}
	return out
}

// ToDomain parses the request. Errors wrap the domain validation sentinels.
func (r *SaveScheduleRequest) ToDomain() (*domain.ScheduleConfiguration, error) {
	dayOff, err := domain.ParseWeekday(r.DayOff)
	if err != nil {
		return nil, err
	}

	specialDates, err := toDomainSpecialDates(r.SpecialDates)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleConfiguration{
		FacilityID:        r.FacilityID,
		DayOff:            dayOff,
		WorkHours:         domain.WorkHours{Start: r.WorkHours.Start, End: r.WorkHours.End},
		SpecialDates:      specialDates,
		TimeSlotTemplate:  toDomainTemplate(r.TimeSlotTemplate),
		DefaultEmployeeID: r.DefaultEmployeeID,
	}, nil
}

// ApplyToConfig copies the present fields onto cfg
func (r *UpdateScheduleRequest) ApplyToConfig(cfg *domain.ScheduleConfiguration) error {
	if r.DayOff != nil {
		dayOff, err := domain.ParseWeekday(*r.DayOff)
		if err != nil {
			return err
		}
		cfg.DayOff = dayOff
	}
	if r.WorkHours != nil {
		cfg.WorkHours = domain.WorkHours{Start: r.WorkHours.Start, End: r.WorkHours.End}
	}
	if r.SpecialDates != nil {
		specialDates, err := toDomainSpecialDates(*r.SpecialDates)
		if err != nil {
			return err
		}
		cfg.SpecialDates = specialDates
	}
	if r.TimeSlotTemplate != nil {
		cfg.TimeSlotTemplate = toDomainTemplate(*r.TimeSlotTemplate)
	}
	if r.DefaultEmployeeID != nil {
		cfg.DefaultEmployeeID = r.DefaultEmployeeID
	}
	return nil
}

func (s SpecialDate) ToDomain() (domain.SpecialDate, error) {
	date, err := domain.ParseDate(s.Date)
	if err != nil {
		return domain.SpecialDate{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidSpecialDate, s.Date)
	}
	return domain.SpecialDate{Date: date, Reason: s.Reason, IsClosed: s.IsClosed}, nil
}

func toDomainSpecialDates(in []SpecialDate) ([]domain.SpecialDate, error) {
	out := make([]domain.SpecialDate, 0, len(in))
	for _, sd := range in {
		d, err := sd.ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func toDomainTemplate(in []TemplateEntry) []domain.TemplateEntry {
	out := make([]domain.TemplateEntry, 0, len(in))
	for _, e := range in {
		out = append(out, domain.TemplateEntry{Time: e.Time, IsActive: e.IsActive})
	}
	return out
}
