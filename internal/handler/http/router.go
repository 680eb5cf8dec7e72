package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/albamate/albamate-backend/internal/handler/http/middleware"
	"github.com/albamate/albamate-backend/internal/pkg/jwt"
)

type RouterOptions struct {
	Env            string
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "albamate"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/attendances", func(r chi.Router) {
			r.Post("/check-in", attendanceHandler.CheckIn)
			r.Post("/check-out", attendanceHandler.CheckOut)
			r.Get("/", attendanceHandler.List)
			r.Get("/{id}", attendanceHandler.Get)

			// Store master only; the service checks the store as well
			r.With(middleware.RequireStoreMaster).Post("/manual", attendanceHandler.RegisterManual)
		})

		r.Route("/stores/{storeID}/payroll-policy", func(r chi.Router) {
			r.Get("/", payrollHandler.GetPolicy)
			r.With(middleware.RequireStoreMaster).Patch("/", payrollHandler.UpdatePolicy)
		})

		r.Route("/payrolls", func(r chi.Router) {
			r.Get("/", payrollHandler.List)
			r.Get("/{id}", payrollHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStoreMaster)
				r.Post("/calculate", payrollHandler.Calculate)
				r.Post("/{id}/confirm", payrollHandler.Confirm)
				r.Post("/{id}/pay", payrollHandler.MarkPaid)
				r.Post("/{id}/cancel", payrollHandler.Cancel)
			})
		})
	})
	return r
}
