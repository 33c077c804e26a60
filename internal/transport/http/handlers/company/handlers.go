package companyhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"staffpay/internal/domain/attendance"
	"staffpay/internal/domain/audit"
	"staffpay/internal/domain/auth"
	"staffpay/internal/domain/company"
	"staffpay/internal/transport/http/api"
	"staffpay/internal/transport/http/middleware"
	"staffpay/internal/transport/http/shared"
)

type Handler struct {
	DB    *pgxpool.Pool
	Store *company.Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{DB: db, Store: company.NewStore(db)}
}

type createCompanyPayload struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type payPolicyPayload struct {
	ContractedDays       int    `json:"contractedDays"`
	StandardHoursPerDay  string `json:"standardHoursPerDay"`
	WorkdayStart         string `json:"workdayStart"`
	HalfDayHourThreshold string `json:"halfDayHourThreshold"`
	HalfDayWeight        string `json:"halfDayWeight"`
	OvertimeMultiplier   string `json:"overtimeMultiplier"`
	LatePenaltyPerMinute string `json:"latePenaltyPerMinute"`
	AbsencePenaltyPerDay string `json:"absencePenaltyPerDay"`
	PFPercent            string `json:"pfPercent"`
	ESIPercent           string `json:"esiPercent"`
	ESIWageCeiling       string `json:"esiWageCeiling"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSystemAdmin)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermSystemAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermCompanyRead)).Get("/current", h.handleCurrent)
		r.With(middleware.RequirePermission(auth.PermCompanyRead)).Get("/current/policy", h.handleGetPolicy)
		r.With(middleware.RequirePermission(auth.PermCompanyWrite)).Put("/current/policy", h.handlePutPolicy)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.ListCompanies(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_list_failed", "failed to list companies", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, companies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createCompanyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "company name is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if payload.Timezone == "" {
		payload.Timezone = "UTC"
	}

	id, err := h.Store.CreateCompany(r.Context(), payload.Name, payload.Timezone)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "company_create_failed", "failed to create company", middleware.GetRequestID(r.Context()))
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), id, user.UserID, "company.create", "company", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit company.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	current, err := h.Store.Company(r.Context(), user.CompanyID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "company_not_found", "company not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, current, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	policy, err := h.Store.PayPolicy(r.Context(), user.CompanyID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "policy_not_found", "pay policy not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, policy, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload payPolicyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.ContractedDays <= 0 || payload.ContractedDays > 31 {
		v.Add("contractedDays", "must be between 1 and 31")
	}
	policy := company.PayPolicy{CompanyID: user.CompanyID, ContractedDays: payload.ContractedDays, WorkdayStart: payload.WorkdayStart}
	policy.StandardHoursPerDay = parseDecimalField(v, "standardHoursPerDay", payload.StandardHoursPerDay)
	policy.HalfDayHourThreshold = parseDecimalField(v, "halfDayHourThreshold", payload.HalfDayHourThreshold)
	policy.HalfDayWeight = parseDecimalField(v, "halfDayWeight", payload.HalfDayWeight)
	policy.OvertimeMultiplier = parseDecimalField(v, "overtimeMultiplier", payload.OvertimeMultiplier)
	policy.LatePenaltyPerMinute = parseDecimalField(v, "latePenaltyPerMinute", payload.LatePenaltyPerMinute)
	policy.AbsencePenaltyPerDay = parseDecimalField(v, "absencePenaltyPerDay", payload.AbsencePenaltyPerDay)
	policy.PFPercent = parseDecimalField(v, "pfPercent", payload.PFPercent)
	policy.ESIPercent = parseDecimalField(v, "esiPercent", payload.ESIPercent)
	policy.ESIWageCeiling = parseDecimalField(v, "esiWageCeiling", payload.ESIWageCeiling)
	if payload.WorkdayStart != "" {
		if _, _, err := attendance.ParseWorkdayStart(payload.WorkdayStart); err != nil {
			v.Add("workdayStart", "must be in HH:MM format")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Store.UpsertPayPolicy(r.Context(), policy); err != nil {
		api.Fail(w, http.StatusInternalServerError, "policy_update_failed", "failed to update pay policy", middleware.GetRequestID(r.Context()))
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "company.policy.update", "pay_policy", user.CompanyID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit company.policy.update failed", "err", err)
	}
	api.Success(w, policy, middleware.GetRequestID(r.Context()))
}

func parseDecimalField(v *shared.Validator, field, raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		v.Add(field, "must be a decimal number")
		return decimal.Zero
	}
	if value.IsNegative() {
		v.Add(field, "must not be negative")
		return decimal.Zero
	}
	return value
}
