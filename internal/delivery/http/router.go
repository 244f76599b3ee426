package http

import (
	"net/http"

	"surgical-clinic-backend/internal/delivery/http/handler"
	"surgical-clinic-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	authHandler           *handler.AuthHandler
	patientHandler        *handler.PatientHandler
	appointmentHandler    *handler.AppointmentHandler
	consultationHandler   *handler.ConsultationHandler
	surgicalCaseHandler   *handler.SurgicalCaseHandler
	theaterHandler        *handler.TheaterHandler
	theaterBookingHandler *handler.TheaterBookingHandler
	invoiceItemHandler    *handler.InvoiceItemHandler
	auditLogHandler       *handler.AuditLogHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	appointmentHandler *handler.AppointmentHandler,
	consultationHandler *handler.ConsultationHandler,
	surgicalCaseHandler *handler.SurgicalCaseHandler,
	theaterHandler *handler.TheaterHandler,
	theaterBookingHandler *handler.TheaterBookingHandler,
	invoiceItemHandler *handler.InvoiceItemHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		authHandler:           authHandler,
		patientHandler:        patientHandler,
		appointmentHandler:    appointmentHandler,
		consultationHandler:   consultationHandler,
		surgicalCaseHandler:   surgicalCaseHandler,
		theaterHandler:        theaterHandler,
		theaterBookingHandler: theaterBookingHandler,
		invoiceItemHandler:    invoiceItemHandler,
		auditLogHandler:       auditLogHandler,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Staff account management (admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/staff", r.authHandler.RegisterStaff).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/theaters", r.theaterHandler.CreateTheater).Methods(http.MethodPost)
	admin.HandleFunc("/theaters/{id}", r.theaterHandler.UpdateTheater).Methods(http.MethodPut)
	admin.HandleFunc("/theaters/{id}", r.theaterHandler.DeleteTheater).Methods(http.MethodDelete)

	// Patient records (reception and admin write, all staff read)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.Handle("", middleware.RequireFrontDesk(http.HandlerFunc(r.patientHandler.CreatePatient))).Methods(http.MethodPost)
	patients.Handle("/{id}", middleware.RequireFrontDesk(http.HandlerFunc(r.patientHandler.UpdatePatient))).Methods(http.MethodPut)
	patients.HandleFunc("", r.patientHandler.ListPatients).Methods(http.MethodGet)
	patients.HandleFunc("/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	patients.HandleFunc("/{patientId}/invoice-items", r.invoiceItemHandler.ListByPatient).Methods(http.MethodGet)

	// Appointments (front desk drives check-in and no-show)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.ListByDoctorAndDay).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.Handle("", middleware.RequireFrontDesk(http.HandlerFunc(r.appointmentHandler.BookAppointment))).Methods(http.MethodPost)
	appointments.Handle("/{id}/check-in", middleware.RequireFrontDesk(http.HandlerFunc(r.appointmentHandler.CheckIn))).Methods(http.MethodPost)
	appointments.Handle("/{id}/no-show", middleware.RequireFrontDesk(http.HandlerFunc(r.appointmentHandler.MarkNoShow))).Methods(http.MethodPost)
	appointments.Handle("/{id}/cancel", middleware.RequireFrontDesk(http.HandlerFunc(r.appointmentHandler.CancelAppointment))).Methods(http.MethodPost)

	// Consultations (clinical staff)
	consultations := api.PathPrefix("/consultations").Subrouter()
	consultations.Use(r.authMiddleware.Authenticate)
	consultations.Use(middleware.RequireClinical)
	consultations.HandleFunc("", r.consultationHandler.StartConsultation).Methods(http.MethodPost)
	consultations.HandleFunc("/{id}", r.consultationHandler.GetConsultation).Methods(http.MethodGet)
	consultations.HandleFunc("/{id}/draft", r.consultationHandler.SaveDraft).Methods(http.MethodPut)
	consultations.HandleFunc("/{id}/complete", r.consultationHandler.CompleteConsultation).Methods(http.MethodPost)

	// Surgical cases (surgeons own the workflow)
	cases := api.PathPrefix("/surgical-cases").Subrouter()
	cases.Use(r.authMiddleware.Authenticate)
	cases.Use(middleware.RequireClinical)
	cases.HandleFunc("", r.surgicalCaseHandler.CreateCase).Methods(http.MethodPost)
	cases.HandleFunc("", r.surgicalCaseHandler.ListByStatus).Methods(http.MethodGet)
	cases.HandleFunc("/{id}", r.surgicalCaseHandler.GetCase).Methods(http.MethodGet)
	cases.HandleFunc("/{id}/plan", r.surgicalCaseHandler.SavePlan).Methods(http.MethodPut)
	cases.HandleFunc("/{id}/submit", r.surgicalCaseHandler.SubmitForScheduling).Methods(http.MethodPost)
	cases.HandleFunc("/{id}/start-prep", r.surgicalCaseHandler.StartPrep).Methods(http.MethodPost)
	cases.HandleFunc("/{id}/enter-theater", r.surgicalCaseHandler.EnterTheater).Methods(http.MethodPost)
	cases.HandleFunc("/{id}/timeline", r.surgicalCaseHandler.RecordTimelineEvent).Methods(http.MethodPost)
	cases.HandleFunc("/{id}/recovery", r.surgicalCaseHandler.MoveToRecovery).Methods(http.MethodPost)
	cases.HandleFunc("/{id}/complete", r.surgicalCaseHandler.CompleteCase).Methods(http.MethodPost)
	cases.HandleFunc("/{id}/cancel", r.surgicalCaseHandler.CancelCase).Methods(http.MethodPost)
	cases.HandleFunc("/{caseId}/bookings", r.theaterBookingHandler.GetBookingsByCase).Methods(http.MethodGet)

	// Theater slots (any staff may read, surgeons and admin book)
	theaters := api.PathPrefix("/theaters").Subrouter()
	theaters.Use(r.authMiddleware.Authenticate)
	theaters.HandleFunc("", r.theaterHandler.ListTheaters).Methods(http.MethodGet)

	bookings := api.PathPrefix("/theater-bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.Use(middleware.RequireSurgeon)
	bookings.HandleFunc("/lock", r.theaterBookingHandler.LockSlot).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/confirm", r.theaterBookingHandler.ConfirmBooking).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}/release", r.theaterBookingHandler.ReleaseLock).Methods(http.MethodPost)

	// Billing (front desk)
	invoices := api.PathPrefix("/invoice-items").Subrouter()
	invoices.Use(r.authMiddleware.Authenticate)
	invoices.Use(middleware.RequireFrontDesk)
	invoices.HandleFunc("", r.invoiceItemHandler.CreateInvoiceItem).Methods(http.MethodPost)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
