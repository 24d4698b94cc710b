package list_appointments

import (
	"net/url"
	"strconv"

	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments/models"
)

// ToServiceRequest builds the service request from query params
func ToServiceRequest(query url.Values) (*models.ListAppointmentsRequest, error) {
	req := &models.ListAppointmentsRequest{
		Date: query.Get("date"),
	}

	if raw := query.Get("facilityId"); raw != "" {
		facilityID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.FacilityID = &facilityID
	}

	if raw := query.Get("includeCanceled"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		req.IncludeCanceled = include
	}

	return req, nil
}
