package generate_slots

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-PoolScheduleService/internal/domain"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/types"
)

// plan is the set of changes that brings stored slots in line with the configuration
type plan struct {
	create    []*domain.Slot
	deleteIDs []int64
	preserved []*domain.Slot
}

// planSlots compares existing slots in [start, end] with what the configuration
// produces for each day. Booked slots are never scheduled for deletion.
func planSlots(cfg *domain.ScheduleConfiguration, start, end time.Time, existing []*domain.Slot) plan {
	byDay := make(map[time.Time]map[types.TimeString]*domain.Slot)
	for _, s := range existing {
		day := domain.DateOnly(s.Date)
		if byDay[day] == nil {
			byDay[day] = make(map[types.TimeString]*domain.Slot)
		}
		byDay[day][s.Time] = s
	}

	activeTimes := cfg.ActiveTimes()
	var p plan

	for day := domain.DateOnly(start); !day.After(domain.DateOnly(end)); day = day.AddDate(0, 0, 1) {
		stored := byDay[day]

		wanted := make(map[types.TimeString]struct{}, len(activeTimes))
		if cfg.IsOpenOn(day) {
			for _, t := range activeTimes {
				wanted[t] = struct{}{}
				if _, ok := stored[t]; ok {
					continue
				}
				p.create = append(p.create, &domain.Slot{
					FacilityID: cfg.FacilityID,
					Date:       day,
					Time:       t,
					EmployeeID: cfg.DefaultEmployeeID,
				})
			}
		}

		for _, t := range sortedTimes(stored) {
			if _, ok := wanted[t]; ok {
				continue
			}
			s := stored[t]
			if s.IsBooked {
				p.preserved = append(p.preserved, s)
				continue
			}
			p.deleteIDs = append(p.deleteIDs, s.ID)
		}
	}

	return p
}

func sortedTimes(stored map[types.TimeString]*domain.Slot) []types.TimeString {
	times := make([]types.TimeString, 0, len(stored))
	for t := range stored {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].IsBefore(times[j]) })
	return times
}
