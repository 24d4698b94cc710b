package app

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addSpecialDateHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/add_special_date"
	bookSlotHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/book_slot"
	cancelAppointmentHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/cancel_appointment"
	confirmAppointmentHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/confirm_appointment"
	generateSlotsHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/generate_slots"
	getAppointmentHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/get_available_slots"
	getScheduleHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/get_schedule"
	listAppointmentsHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/list_appointments"
	markNoShowHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/mark_no_show"
	removeSpecialDateHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/remove_special_date"
	saveScheduleHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/save_schedule"
	updateScheduleHandler "github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers/update_schedule"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/handlers"
	"github.com/m04kA/SMC-PoolScheduleService/internal/api/middleware"
	"github.com/m04kA/SMC-PoolScheduleService/internal/config"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/appointments"
	"github.com/m04kA/SMC-PoolScheduleService/internal/service/schedule"
	bookSlotUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/book_slot"
	generateSlotsUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/generate_slots"
	getAvailableSlotsUC "github.com/m04kA/SMC-PoolScheduleService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/logger"
	"github.com/m04kA/SMC-PoolScheduleService/pkg/metrics"
)

// RouterDeps is everything the HTTP surface calls into.
type RouterDeps struct {
	Schedule       *schedule.Service
	Appointments   *appointments.Service
	GenerateSlots  *generateSlotsUC.UseCase
	BookSlot       *bookSlotUC.UseCase
	AvailableSlots *getAvailableSlotsUC.UseCase

	Logger    *logger.Logger
	RateLimit config.RateLimitConfig

	// Metrics and Gatherer are nil when metrics are disabled
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsPath string

	// Health checks storage for GET /health; nil reports healthy
	Health func(ctx context.Context) error
}

func NewRouter(deps RouterDeps) *mux.Router {
	log := deps.Logger

	getAvailableSlots := getAvailableSlotsHandler.NewHandler(deps.AvailableSlots, log)
	getSchedule := getScheduleHandler.NewHandler(deps.Schedule, log)
	bookSlot := bookSlotHandler.NewHandler(deps.BookSlot, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(deps.Appointments, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(deps.Appointments, log)
	getAppointment := getAppointmentHandler.NewHandler(deps.Appointments, log)
	saveSchedule := saveScheduleHandler.NewHandler(deps.Schedule, log)
	updateSchedule := updateScheduleHandler.NewHandler(deps.Schedule, log)
	addSpecialDate := addSpecialDateHandler.NewHandler(deps.Schedule, log)
	removeSpecialDate := removeSpecialDateHandler.NewHandler(deps.Schedule, log)
	generateSlots := generateSlotsHandler.NewHandler(deps.GenerateSlots, log)
	listAppointments := listAppointmentsHandler.NewHandler(deps.Appointments, log)
	markNoShow := markNoShowHandler.NewHandler(deps.Appointments, log)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))

	if deps.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(deps.Metrics))
		r.Handle(deps.MetricsPath, promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", healthHandler(deps.Health, log)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/work-schedule/{facilityId:[0-9]+}", getSchedule.Handle).Methods(http.MethodGet)

	// Authenticated clients and administrators
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	if deps.RateLimit.Enabled {
		protected.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: deps.RateLimit.RPS,
			Burst:             deps.RateLimit.Burst,
		}))
	}

	protected.HandleFunc("/book", bookSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/cancel", cancelAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/confirm/{appointmentId}", confirmAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId:[0-9]+}", getAppointment.Handle).Methods(http.MethodGet)

	// Administrators only
	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/work-schedule/{facilityId}", saveSchedule.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/work-schedule/{facilityId}", updateSchedule.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/work-schedule/{facilityId}/special-dates", addSpecialDate.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/work-schedule/{facilityId}/special-dates/{date}", removeSpecialDate.Handle).Methods(http.MethodDelete)
	admin.HandleFunc("/work-schedule/{facilityId}/update-slots", generateSlots.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/no-show", markNoShow.Handle).Methods(http.MethodPost)

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func healthHandler(check func(ctx context.Context) error, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				log.Error("GET /health - Storage unavailable: %v", err)
				handlers.RespondJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		handlers.RespondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
