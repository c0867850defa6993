package http

import (
	"log/slog"
	"os"

	"github.com/barangay-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/barangay-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	payrollHandler PayrollHandler,
	deductionHandler DeductionHandler,
	loanHandler LoanHandler,
	notificationHandler NotificationHandler,
	allowedOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "barangay-payroll"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/entries", payrollHandler.ListEntries)
				r.Get("/entries/{id}", payrollHandler.GetEntry)
				r.Get("/summary", payrollHandler.GetSummary)
				r.Get("/employees/{employeeID}/entry", payrollHandler.GetMyEntry)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/generate", payrollHandler.Generate)
					r.Post("/archive", payrollHandler.Archive)
					r.Post("/clear-pending", payrollHandler.ClearPending)
					r.Post("/reconcile", payrollHandler.Reconcile)
					r.Patch("/entries/{id}", payrollHandler.UpdateEntry)
				})

				// Treasurer disburses
				r.Group(func(r chi.Router) {
					r.Use(middleware.TreasurerOrAdmin)
					r.Post("/release", payrollHandler.Release)
				})
			})

			r.Route("/deductions", func(r chi.Router) {
				r.Get("/types", deductionHandler.ListTypes)
				r.Get("/types/{id}", deductionHandler.GetType)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/types", deductionHandler.CreateType)
					r.Put("/types/{id}", deductionHandler.UpdateType)
					r.Patch("/types/{id}/rate", deductionHandler.UpdateTypeRate)
					r.Post("/employees/{employeeID}", deductionHandler.ApplyToEmployee)
					r.Delete("/instances/{id}", deductionHandler.ArchiveInstance)
				})

				r.Get("/employees/{employeeID}", deductionHandler.ListEmployeeDeductions)
			})

			r.Route("/loans", func(r chi.Router) {
				r.Post("/", loanHandler.Create)
				r.Get("/{id}", loanHandler.Get)
				r.Get("/employees/{employeeID}", loanHandler.ListByEmployee)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", loanHandler.Approve)
					r.Post("/{id}/reject", loanHandler.Reject)
					r.Delete("/{id}", loanHandler.Archive)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Post("/mark-read", notificationHandler.MarkAsRead)
				r.Post("/mark-all-read", notificationHandler.MarkAllAsRead)
			})
		})
	})
	return r
}
