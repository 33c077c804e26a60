package staffhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"staffpay/internal/domain/audit"
	"staffpay/internal/domain/auth"
	"staffpay/internal/domain/payroll"
	"staffpay/internal/domain/staff"
	"staffpay/internal/transport/http/api"
	"staffpay/internal/transport/http/middleware"
	"staffpay/internal/transport/http/shared"
)

type Handler struct {
	DB    *pgxpool.Pool
	Store *staff.Store
}

func NewHandler(db *pgxpool.Pool) *Handler {
	return &Handler{DB: db, Store: staff.NewStore(db)}
}

type createStaffPayload struct {
	UserID      string `json:"userId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Designation string `json:"designation"`

	PayType           string `json:"payType"`
	MonthlySalary     string `json:"monthlySalary"`
	HourlyRate        string `json:"hourlyRate"`
	DailyRate         string `json:"dailyRate"`
	StatutoryEligible bool   `json:"statutoryEligible"`
}

type compensationPayload struct {
	PayType           string `json:"payType"`
	MonthlySalary     string `json:"monthlySalary"`
	HourlyRate        string `json:"hourlyRate"`
	DailyRate         string `json:"dailyRate"`
	StatutoryEligible bool   `json:"statutoryEligible"`

	ContractedDays       *int   `json:"contractedDays"`
	HalfDayHourThreshold string `json:"halfDayHourThreshold"`
	HalfDayWeight        string `json:"halfDayWeight"`
	OvertimeMultiplier   string `json:"overtimeMultiplier"`
	LatePenaltyPerMinute string `json:"latePenaltyPerMinute"`
	AbsencePenaltyPerDay string `json:"absencePenaltyPerDay"`
	PFPercent            string `json:"pfPercent"`
	ESIPercent           string `json:"esiPercent"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermStaffRead)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermStaffWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermStaffRead)).Get("/{staffID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermStaffRead)).Get("/{staffID}/config", h.handleEffectiveConfig)
		r.With(middleware.RequirePermission(auth.PermStaffWrite)).Put("/{staffID}/compensation", h.handleCompensation)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePage(r)
	members, err := h.Store.ListMembers(r.Context(), user.CompanyID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_list_failed", "failed to list staff", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, members, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload createStaffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("email", payload.Email, "email is required")
	v.Enum("payType", payload.PayType, []string{string(payroll.PayMonthly), string(payroll.PayHourly), string(payroll.PayDaily)}, "must be monthly, hourly or daily")
	member := staff.Staff{
		CompanyID:         user.CompanyID,
		UserID:            payload.UserID,
		FullName:          strings.TrimSpace(payload.FullName),
		Email:             strings.TrimSpace(payload.Email),
		Designation:       strings.TrimSpace(payload.Designation),
		Status:            "active",
		PayType:           payroll.PayType(strings.ToLower(payload.PayType)),
		StatutoryEligible: payload.StatutoryEligible,
	}
	applyRates(v, &member, payload.MonthlySalary, payload.HourlyRate, payload.DailyRate)
	requireRate(v, member)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.CreateMember(r.Context(), member)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "staff_create_failed", "failed to create staff member", middleware.GetRequestID(r.Context()))
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "staff.create", "staff", id, middleware.GetRequestID(r.Context()), shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit staff.create failed", "err", err)
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	staffID := chi.URLParam(r, "staffID")
	if !shared.ValidUUID(staffID) {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}
	member, err := h.Store.Member(r.Context(), user.CompanyID, staffID)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "staff_get_failed", "failed to load staff member", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, member, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEffectiveConfig(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	staffID := chi.URLParam(r, "staffID")
	if !shared.ValidUUID(staffID) {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}

	if _, err := h.Store.Member(r.Context(), user.CompanyID, staffID); err != nil {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}
	cfg, err := h.Store.EffectiveConfig(r.Context(), staffID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "config_failed", "failed to resolve compensation config", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, cfg, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompensation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	staffID := chi.URLParam(r, "staffID")
	if !shared.ValidUUID(staffID) {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}

	member, err := h.Store.Member(r.Context(), user.CompanyID, staffID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}

	var payload compensationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Enum("payType", payload.PayType, []string{string(payroll.PayMonthly), string(payroll.PayHourly), string(payroll.PayDaily)}, "must be monthly, hourly or daily")
	if payload.PayType != "" {
		member.PayType = payroll.PayType(strings.ToLower(payload.PayType))
	}
	member.StatutoryEligible = payload.StatutoryEligible
	applyRates(v, &member, payload.MonthlySalary, payload.HourlyRate, payload.DailyRate)
	requireRate(v, member)

	override := staff.Override{ContractedDays: payload.ContractedDays}
	override.HalfDayHourThreshold = overrideDecimal(v, "halfDayHourThreshold", payload.HalfDayHourThreshold)
	override.HalfDayWeight = overrideDecimal(v, "halfDayWeight", payload.HalfDayWeight)
	override.OvertimeMultiplier = overrideDecimal(v, "overtimeMultiplier", payload.OvertimeMultiplier)
	override.LatePenaltyPerMinute = overrideDecimal(v, "latePenaltyPerMinute", payload.LatePenaltyPerMinute)
	override.AbsencePenaltyPerDay = overrideDecimal(v, "absencePenaltyPerDay", payload.AbsencePenaltyPerDay)
	override.PFPercent = overrideDecimal(v, "pfPercent", payload.PFPercent)
	override.ESIPercent = overrideDecimal(v, "esiPercent", payload.ESIPercent)
	if payload.ContractedDays != nil && (*payload.ContractedDays <= 0 || *payload.ContractedDays > 31) {
		v.Add("contractedDays", "must be between 1 and 31")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Store.UpdateCompensation(r.Context(), user.CompanyID, staffID, member, override); err != nil {
		api.Fail(w, http.StatusInternalServerError, "compensation_update_failed", "failed to update compensation", middleware.GetRequestID(r.Context()))
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "staff.compensation.update", "staff", staffID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), payload); err != nil {
		slog.Warn("audit staff.compensation.update failed", "err", err)
	}
	api.Success(w, map[string]string{"id": staffID}, middleware.GetRequestID(r.Context()))
}

func applyRates(v *shared.Validator, member *staff.Staff, monthly, hourly, daily string) {
	member.MonthlySalary = overrideDecimal(v, "monthlySalary", monthly)
	member.HourlyRate = overrideDecimal(v, "hourlyRate", hourly)
	member.DailyRate = overrideDecimal(v, "dailyRate", daily)
}

// requireRate checks the rate matching the pay basis is present and positive.
func requireRate(v *shared.Validator, member staff.Staff) {
	check := func(field string, rate *decimal.Decimal) {
		if rate == nil || !rate.IsPositive() {
			v.Add(field, "must be a positive amount for the selected pay type")
		}
	}
	switch member.PayType {
	case payroll.PayMonthly:
		check("monthlySalary", member.MonthlySalary)
	case payroll.PayHourly:
		check("hourlyRate", member.HourlyRate)
	case payroll.PayDaily:
		check("dailyRate", member.DailyRate)
	}
}

func overrideDecimal(v *shared.Validator, field, raw string) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		v.Add(field, "must be a decimal number")
		return nil
	}
	if value.IsNegative() {
		v.Add(field, "must not be negative")
		return nil
	}
	return &value
}
