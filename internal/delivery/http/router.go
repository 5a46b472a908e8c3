package http

import (
	"net/http"

	"cleanhome-backend/internal/delivery/http/handler"
	"cleanhome-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	serviceHandler      *handler.ServiceHandler
	bookingHandler      *handler.BookingHandler
	paymentHandler      *handler.PaymentHandler
	adminBookingHandler *handler.AdminBookingHandler
	staffHandler        *handler.StaffHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	serviceHandler *handler.ServiceHandler,
	bookingHandler *handler.BookingHandler,
	paymentHandler *handler.PaymentHandler,
	adminBookingHandler *handler.AdminBookingHandler,
	staffHandler *handler.StaffHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		serviceHandler:      serviceHandler,
		bookingHandler:      bookingHandler,
		paymentHandler:      paymentHandler,
		adminBookingHandler: adminBookingHandler,
		staffHandler:        staffHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", r.authHandler.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", r.authHandler.ResetPassword).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Service catalogue (public)
	api.HandleFunc("/services", r.serviceHandler.ListServices).Methods(http.MethodGet)

	// Gateway callbacks (public, authenticated by signature)
	gateway := api.PathPrefix("/payments/vnpay").Subrouter()
	gateway.HandleFunc("/return", r.paymentHandler.Return).Methods(http.MethodGet)
	gateway.HandleFunc("/notify", r.paymentHandler.Notify).Methods(http.MethodGet, http.MethodPost)

	// Payments (protected)
	payments := api.PathPrefix("/payments").Subrouter()
	payments.Use(r.authMiddleware.Authenticate)
	payments.HandleFunc("/vnpay/create", r.paymentHandler.CreatePayment).Methods(http.MethodPost)
	payments.HandleFunc("/bookings/{id}/transactions", r.paymentHandler.GetTransactions).Methods(http.MethodGet)

	// Bookings (protected)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.HandleFunc("", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	bookings.HandleFunc("/my", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPut)

	// Staff area (protected - staff or admin)
	staff := api.PathPrefix("/staff").Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireStaffOrAdmin)
	staff.HandleFunc("/{id}/stats", r.staffHandler.GetStats).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/services", r.serviceHandler.CreateService).Methods(http.MethodPost)

	admin.HandleFunc("/bookings", r.adminBookingHandler.ListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}/status", r.adminBookingHandler.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/bookings/{id}/payment-status", r.adminBookingHandler.UpdatePaymentStatus).Methods(http.MethodPut)
	admin.HandleFunc("/bookings/{id}/assign-staff", r.adminBookingHandler.AssignStaff).Methods(http.MethodPut)
	admin.HandleFunc("/bookings/{id}/assign-multiple-staff", r.adminBookingHandler.AssignMultipleStaff).Methods(http.MethodPut)
	admin.HandleFunc("/bookings/{id}/cancel", r.adminBookingHandler.CancelBooking).Methods(http.MethodPut)

	admin.HandleFunc("/staff", r.staffHandler.ListStaff).Methods(http.MethodGet)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
