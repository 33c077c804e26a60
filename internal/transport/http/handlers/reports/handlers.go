package reportshandler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffpay/internal/domain/auth"
	"staffpay/internal/domain/payroll"
	"staffpay/internal/domain/reports"
	"staffpay/internal/transport/http/api"
	"staffpay/internal/transport/http/middleware"
	"staffpay/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{Service: reports.NewService(db)}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead)).Get("/payroll-register", h.handlePayrollRegister)
	})
}

func (h *Handler) handlePayrollRegister(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	v := shared.NewValidator()
	v.Period("year", year, "month", month)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	period := payroll.NewPeriod(year, time.Month(month))
	rows, err := h.Service.MonthlyRegister(r.Context(), user.CompanyID, period)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build payroll register", middleware.GetRequestID(r.Context()))
		return
	}
	csvBytes, err := reports.RegisterCSV(period, rows)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build payroll register", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payroll-register-%s.csv", period))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(csvBytes); err != nil {
		slog.Warn("register write failed", "err", err)
	}
}
