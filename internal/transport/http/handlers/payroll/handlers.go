package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffpay/internal/domain/audit"
	"staffpay/internal/domain/auth"
	"staffpay/internal/domain/company"
	"staffpay/internal/domain/payroll"
	"staffpay/internal/domain/staff"
	"staffpay/internal/transport/http/api"
	"staffpay/internal/transport/http/middleware"
	"staffpay/internal/transport/http/shared"
)

type Handler struct {
	DB       *pgxpool.Pool
	Service  *payroll.Service
	Staff    *staff.Store
	Company  *company.Store
	Payslips *payroll.PayslipWriter
}

func NewHandler(db *pgxpool.Pool, service *payroll.Service, payslips *payroll.PayslipWriter) *Handler {
	return &Handler{
		DB:       db,
		Service:  service,
		Staff:    staff.NewStore(db),
		Company:  company.NewStore(db),
		Payslips: payslips,
	}
}

type calculateRequest struct {
	StaffID string `json:"staffId"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
}

type ledgerPostRequest struct {
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

type reverseRequest struct {
	Reason string `json:"reason"`
}

type salaryDTO struct {
	ID            string     `json:"id"`
	StaffID       string     `json:"staffId"`
	Period        string     `json:"period"`
	WorkingDays   int        `json:"workingDays"`
	HalfDays      int        `json:"halfDays"`
	AbsentDays    int        `json:"absentDays"`
	PayableDays   string     `json:"payableDays"`
	WorkingHours  string     `json:"workingHours"`
	OvertimeHours string     `json:"overtimeHours"`
	LateMinutes   int        `json:"lateMinutes"`
	BaseAmount    string     `json:"baseAmount"`
	Overtime      string     `json:"overtimeAmount"`
	Penalty       string     `json:"penaltyAmount"`
	Deductions    string     `json:"deductionAmount"`
	GrossAmount   string     `json:"grossAmount"`
	NetAmount     string     `json:"netAmount"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
}

type breakdownDTO struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type ledgerDTO struct {
	ID         string    `json:"id"`
	SalaryID   string    `json:"salaryId"`
	Type       string    `json:"entryType"`
	Amount     string    `json:"amount"`
	Reason     string    `json:"reason"`
	ReversalOf string    `json:"reversalOf,omitempty"`
	CreatedBy  string    `json:"createdBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toSalaryDTO(rec payroll.SalaryRecord) salaryDTO {
	return salaryDTO{
		ID:            rec.ID,
		StaffID:       rec.StaffID,
		Period:        rec.Period.String(),
		WorkingDays:   rec.WorkingDays,
		HalfDays:      rec.HalfDays,
		AbsentDays:    rec.AbsentDays,
		PayableDays:   rec.PayableDays.StringFixed(2),
		WorkingHours:  rec.WorkingHours.StringFixed(2),
		OvertimeHours: rec.OvertimeHours.StringFixed(2),
		LateMinutes:   rec.LateMinutes,
		BaseAmount:    rec.BaseAmount.StringFixed(2),
		Overtime:      rec.OvertimeAmount.StringFixed(2),
		Penalty:       rec.PenaltyAmount.StringFixed(2),
		Deductions:    rec.DeductionAmount.StringFixed(2),
		GrossAmount:   rec.GrossAmount.StringFixed(2),
		NetAmount:     rec.NetAmount.StringFixed(2),
		Status:        rec.Status,
		PaidAt:        rec.PaidAt,
	}
}

func toBreakdownDTOs(entries []payroll.BreakdownEntry) []breakdownDTO {
	out := make([]breakdownDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, breakdownDTO{Type: entry.Type, Description: entry.Description, Amount: entry.Amount.StringFixed(2)})
	}
	return out
}

func toLedgerDTOs(entries []payroll.LedgerEntry) []ledgerDTO {
	out := make([]ledgerDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, ledgerDTO{
			ID:         entry.ID,
			SalaryID:   entry.SalaryID,
			Type:       entry.Type,
			Amount:     entry.Amount.StringFixed(2),
			Reason:     entry.Reason,
			ReversalOf: entry.ReversalOf,
			CreatedBy:  entry.CreatedBy,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return out
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRun)).Post("/calculate", h.handleCalculate)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/salaries", h.handleListSalaries)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/salaries/{salaryID}", h.handleGetSalary)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/salaries/{salaryID}/breakdown", h.handleBreakdown)
		r.With(middleware.RequirePermission(auth.PermPayrollApprove)).Post("/salaries/{salaryID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermPayrollApprove)).Post("/salaries/{salaryID}/reject", h.handleReject)
		r.With(middleware.RequirePermission(auth.PermPayrollPay)).Post("/salaries/{salaryID}/pay", h.handlePay)
		r.With(middleware.RequirePermission(auth.PermLedgerPost)).Post("/salaries/{salaryID}/ledger/payments", h.handlePostPayment)
		r.With(middleware.RequirePermission(auth.PermLedgerPost)).Post("/salaries/{salaryID}/ledger/deductions", h.handlePostDeduction)
		r.With(middleware.RequirePermission(auth.PermLedgerPost)).Post("/salaries/{salaryID}/ledger/recoveries", h.handlePostRecovery)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/salaries/{salaryID}/ledger", h.handleLedger)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/salaries/{salaryID}/reconciliation", h.handleReconciliation)
		r.With(middleware.RequirePermission(auth.PermPayrollRead)).Get("/salaries/{salaryID}/payslip", h.handlePayslip)
		r.With(middleware.RequirePermission(auth.PermLedgerPost)).Post("/ledger/{entryID}/reverse", h.handleReverse)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("staffId", payload.StaffID, "staffId is required")
	v.Period("year", payload.Year, "month", payload.Month)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if _, err := h.Staff.Member(r.Context(), user.CompanyID, payload.StaffID); err != nil {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}

	period := payroll.NewPeriod(payload.Year, time.Month(payload.Month))
	rec, entries, err := h.Service.RunCalculation(r.Context(), payload.StaffID, period)
	if err != nil {
		h.failPayroll(w, r, err, "calculation_failed", "salary calculation failed")
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "payroll.calculate", "salary_record", rec.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]any{"staffId": payload.StaffID, "period": period.String()}); err != nil {
		slog.Warn("audit payroll.calculate failed", "err", err)
	}
	api.Success(w, map[string]any{
		"salary":    toSalaryDTO(rec),
		"breakdown": toBreakdownDTOs(entries),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSalaries(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	v := shared.NewValidator()
	v.Period("year", year, "month", month)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	page := shared.ParsePage(r)
	records, err := h.Service.ListSalaries(r.Context(), user.CompanyID, payroll.NewPeriod(year, time.Month(month)), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "salary_list_failed", "failed to list salaries", middleware.GetRequestID(r.Context()))
		return
	}

	out := make([]salaryDTO, 0, len(records))
	for _, rec := range records {
		if !h.canView(user, rec) {
			continue
		}
		out = append(out, toSalaryDTO(rec))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSalary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rec, ok := h.loadSalary(w, r, user)
	if !ok {
		return
	}
	api.Success(w, toSalaryDTO(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rec, ok := h.loadSalary(w, r, user)
	if !ok {
		return
	}
	entries, err := h.Service.Breakdown(r.Context(), user.CompanyID, rec.ID)
	if err != nil {
		h.failPayroll(w, r, err, "breakdown_failed", "failed to load breakdown")
		return
	}
	api.Success(w, toBreakdownDTOs(entries), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject")
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "pay")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string) {
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")
	if !shared.ValidUUID(salaryID) {
		h.failPayroll(w, r, payroll.ErrSalaryNotFound, "transition_failed", "salary status change failed")
		return
	}

	var rec payroll.SalaryRecord
	var err error
	switch action {
	case "approve":
		rec, err = h.Service.Approve(r.Context(), user.CompanyID, salaryID)
	case "reject":
		rec, err = h.Service.Reject(r.Context(), user.CompanyID, salaryID)
	default:
		rec, err = h.Service.MarkPaid(r.Context(), user.CompanyID, salaryID)
	}
	if err != nil {
		h.failPayroll(w, r, err, "transition_failed", "salary status change failed")
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "payroll."+action, "salary_record", salaryID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit payroll transition failed", "action", action, "err", err)
	}
	api.Success(w, toSalaryDTO(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePostPayment(w http.ResponseWriter, r *http.Request) {
	h.postLedger(w, r, payroll.LedgerPayment)
}

func (h *Handler) handlePostDeduction(w http.ResponseWriter, r *http.Request) {
	h.postLedger(w, r, payroll.LedgerDeduction)
}

func (h *Handler) handlePostRecovery(w http.ResponseWriter, r *http.Request) {
	h.postLedger(w, r, payroll.LedgerRecovery)
}

func (h *Handler) postLedger(w http.ResponseWriter, r *http.Request, entryType string) {
	user, _ := middleware.GetUser(r.Context())
	salaryID := chi.URLParam(r, "salaryID")
	if !shared.ValidUUID(salaryID) {
		h.failPayroll(w, r, payroll.ErrSalaryNotFound, "ledger_post_failed", "ledger posting failed")
		return
	}

	var payload ledgerPostRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	amount, _ := v.PositiveAmount("amount", payload.Amount)
	v.Required("reason", payload.Reason, "reason is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	var entry payroll.LedgerEntry
	var err error
	switch entryType {
	case payroll.LedgerPayment:
		entry, err = h.Service.PostPayment(r.Context(), user.CompanyID, salaryID, amount, payload.Reason, user.UserID)
	case payroll.LedgerDeduction:
		entry, err = h.Service.PostDeduction(r.Context(), user.CompanyID, salaryID, amount, payload.Reason, user.UserID)
	default:
		entry, err = h.Service.PostRecovery(r.Context(), user.CompanyID, salaryID, amount, payload.Reason, user.UserID)
	}
	if err != nil {
		h.failPayroll(w, r, err, "ledger_post_failed", "ledger posting failed")
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "payroll.ledger."+entryType, "ledger_entry", entry.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]string{"salaryId": salaryID, "amount": payload.Amount}); err != nil {
		slog.Warn("audit ledger post failed", "err", err)
	}
	api.Created(w, toLedgerDTOs([]payroll.LedgerEntry{entry})[0], middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReverse(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	entryID := chi.URLParam(r, "entryID")
	if !shared.ValidUUID(entryID) {
		h.failPayroll(w, r, payroll.ErrEntryNotFound, "ledger_reverse_failed", "ledger reversal failed")
		return
	}

	var payload reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("reason", payload.Reason, "reason is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	entry, err := h.Service.PostReversal(r.Context(), user.CompanyID, entryID, payload.Reason, user.UserID)
	if err != nil {
		h.failPayroll(w, r, err, "ledger_reverse_failed", "ledger reversal failed")
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "payroll.ledger.reverse", "ledger_entry", entry.ID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), map[string]string{"reversalOf": entryID}); err != nil {
		slog.Warn("audit ledger reverse failed", "err", err)
	}
	api.Created(w, toLedgerDTOs([]payroll.LedgerEntry{entry})[0], middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rec, ok := h.loadSalary(w, r, user)
	if !ok {
		return
	}
	entries, err := h.Service.Ledger(r.Context(), user.CompanyID, rec.ID)
	if err != nil {
		h.failPayroll(w, r, err, "ledger_failed", "failed to load ledger")
		return
	}
	api.Success(w, toLedgerDTOs(entries), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rec, ok := h.loadSalary(w, r, user)
	if !ok {
		return
	}
	recon, err := h.Service.ReconcileSalary(r.Context(), user.CompanyID, rec.ID)
	if err != nil {
		h.failPayroll(w, r, err, "reconciliation_failed", "failed to reconcile salary")
		return
	}
	api.Success(w, recon, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	rec, ok := h.loadSalary(w, r, user)
	if !ok {
		return
	}

	member, err := h.Staff.Member(r.Context(), user.CompanyID, rec.StaffID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
		return
	}
	current, err := h.Company.Company(r.Context(), user.CompanyID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	entries, err := h.Service.Breakdown(r.Context(), user.CompanyID, rec.ID)
	if err != nil {
		h.failPayroll(w, r, err, "payslip_failed", "failed to render payslip")
		return
	}
	recon, err := h.Service.ReconcileSalary(r.Context(), user.CompanyID, rec.ID)
	if err != nil {
		h.failPayroll(w, r, err, "payslip_failed", "failed to render payslip")
		return
	}

	pdf, err := payroll.RenderPayslipPDF(payroll.PayslipData{
		CompanyName: current.Name,
		StaffName:   member.FullName,
		StaffEmail:  member.Email,
		Designation: member.Designation,
		Record:      rec,
		Entries:     entries,
		Recon:       recon,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Payslips != nil {
		if _, err := h.Payslips.Store(rec, pdf); err != nil {
			slog.Warn("payslip archive failed", "salaryId", rec.ID, "err", err)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%s-%s.pdf", rec.StaffID, rec.Period))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("payslip write failed", "err", err)
	}
}

// loadSalary fetches the record, scoped to the caller's company, and
// applies the self-only rule for accounts without the staff.read grant.
func (h *Handler) loadSalary(w http.ResponseWriter, r *http.Request, user auth.UserContext) (payroll.SalaryRecord, bool) {
	salaryID := chi.URLParam(r, "salaryID")
	if !shared.ValidUUID(salaryID) {
		h.failPayroll(w, r, payroll.ErrSalaryNotFound, "salary_get_failed", "failed to load salary record")
		return payroll.SalaryRecord{}, false
	}
	rec, err := h.Service.Salary(r.Context(), user.CompanyID, salaryID)
	if err != nil {
		h.failPayroll(w, r, err, "salary_get_failed", "failed to load salary record")
		return payroll.SalaryRecord{}, false
	}
	if !h.canView(user, rec) {
		api.Fail(w, http.StatusNotFound, "salary_not_found", "salary record not found", middleware.GetRequestID(r.Context()))
		return payroll.SalaryRecord{}, false
	}
	return rec, true
}

func (h *Handler) canView(user auth.UserContext, rec payroll.SalaryRecord) bool {
	if auth.HasPermission(user.Role, auth.PermStaffRead) {
		return true
	}
	return rec.StaffID == user.StaffID
}

func (h *Handler) failPayroll(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrSalaryNotFound):
		api.Fail(w, http.StatusNotFound, "salary_not_found", "salary record not found", requestID)
	case errors.Is(err, payroll.ErrEntryNotFound):
		api.Fail(w, http.StatusNotFound, "ledger_entry_not_found", "ledger entry not found", requestID)
	case payroll.IsKind(err, payroll.KindValidation):
		api.Fail(w, http.StatusBadRequest, "payroll_invalid", err.Error(), requestID)
	case payroll.IsKind(err, payroll.KindState):
		api.Fail(w, http.StatusConflict, "payroll_state", err.Error(), requestID)
	case payroll.IsKind(err, payroll.KindConfiguration):
		api.Fail(w, http.StatusUnprocessableEntity, "payroll_configuration", err.Error(), requestID)
	case payroll.IsKind(err, payroll.KindReconciliation):
		slog.Error("reconciliation mismatch", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "payroll_reconciliation", "reconciliation mismatch", requestID)
	default:
		slog.Error("payroll request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
