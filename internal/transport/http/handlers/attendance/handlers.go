package attendancehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffpay/internal/domain/attendance"
	"staffpay/internal/domain/audit"
	"staffpay/internal/domain/auth"
	"staffpay/internal/domain/staff"
	"staffpay/internal/transport/http/api"
	"staffpay/internal/transport/http/middleware"
	"staffpay/internal/transport/http/shared"
)

type Handler struct {
	DB      *pgxpool.Pool
	Service *attendance.Service
	Records *attendance.Store
	Staff   *staff.Store
}

func NewHandler(db *pgxpool.Pool, service *attendance.Service) *Handler {
	return &Handler{DB: db, Service: service, Records: attendance.NewStore(db), Staff: staff.NewStore(db)}
}

type dayRecordDTO struct {
	ID           string     `json:"id"`
	StaffID      string     `json:"staffId"`
	Date         string     `json:"date"`
	PunchIn      *time.Time `json:"punchIn,omitempty"`
	PunchOut     *time.Time `json:"punchOut,omitempty"`
	WorkingHours string     `json:"workingHours,omitempty"`
	LateMinutes  int        `json:"lateMinutes"`
	Status       string     `json:"status"`
	ApprovedBy   string     `json:"approvedBy,omitempty"`
}

func toDTO(rec attendance.DayRecord) dayRecordDTO {
	dto := dayRecordDTO{
		ID:          rec.ID,
		StaffID:     rec.StaffID,
		Date:        rec.Date.Format("2006-01-02"),
		PunchIn:     rec.PunchIn,
		PunchOut:    rec.PunchOut,
		LateMinutes: rec.LateMinutes,
		Status:      rec.Status,
		ApprovedBy:  rec.ApprovedBy,
	}
	if rec.WorkingHours != nil {
		dto.WorkingHours = rec.WorkingHours.StringFixed(2)
	}
	return dto
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite)).Post("/punch-in", h.handlePunchIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite)).Post("/punch-out", h.handlePunchOut)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead)).Get("/month", h.handleMonth)
		r.With(middleware.RequirePermission(auth.PermAttendanceApprove)).Post("/{recordID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermAttendanceApprove)).Post("/{recordID}/reject", h.handleReject)
	})
}

func (h *Handler) handlePunchIn(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if user.StaffID == "" {
		api.Fail(w, http.StatusForbidden, "no_staff_profile", "account has no staff profile", middleware.GetRequestID(r.Context()))
		return
	}
	rec, err := h.Service.PunchIn(r.Context(), user.StaffID)
	if err != nil {
		h.failAttendance(w, r, err, "punch_in_failed", "failed to punch in")
		return
	}
	api.Created(w, toDTO(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePunchOut(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if user.StaffID == "" {
		api.Fail(w, http.StatusForbidden, "no_staff_profile", "account has no staff profile", middleware.GetRequestID(r.Context()))
		return
	}
	rec, err := h.Service.PunchOut(r.Context(), user.StaffID)
	if err != nil {
		h.failAttendance(w, r, err, "punch_out_failed", "failed to punch out")
		return
	}
	api.Success(w, toDTO(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMonth(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	staffID := r.URL.Query().Get("staffId")
	if staffID == "" {
		staffID = user.StaffID
	}
	if staffID == "" {
		api.Fail(w, http.StatusBadRequest, "staff_required", "staffId is required", middleware.GetRequestID(r.Context()))
		return
	}
	// Reading someone else's month needs the staff.read permission and
	// the record owner must be in the caller's company.
	if staffID != user.StaffID {
		if !auth.HasPermission(user.Role, auth.PermStaffRead) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", middleware.GetRequestID(r.Context()))
			return
		}
		if _, err := h.Staff.Member(r.Context(), user.CompanyID, staffID); err != nil {
			api.Fail(w, http.StatusNotFound, "staff_not_found", "staff member not found", middleware.GetRequestID(r.Context()))
			return
		}
	}

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	v := shared.NewValidator()
	v.Period("year", year, "month", month)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	records, err := h.Service.Month(r.Context(), staffID, year, time.Month(month))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_month_failed", "failed to list attendance", middleware.GetRequestID(r.Context()))
		return
	}
	out := make([]dayRecordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toDTO(rec))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "approve")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "reject")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, action string) {
	user, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")
	if !shared.ValidUUID(recordID) {
		api.Fail(w, http.StatusNotFound, "attendance_not_found", "attendance record not found", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Records.RecordByID(r.Context(), recordID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "attendance_not_found", "attendance record not found", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := h.Staff.Member(r.Context(), user.CompanyID, rec.StaffID); err != nil {
		api.Fail(w, http.StatusNotFound, "attendance_not_found", "attendance record not found", middleware.GetRequestID(r.Context()))
		return
	}

	var reviewed attendance.DayRecord
	if action == "approve" {
		reviewed, err = h.Service.Approve(r.Context(), recordID, user.UserID)
	} else {
		reviewed, err = h.Service.Reject(r.Context(), recordID, user.UserID)
	}
	if err != nil {
		h.failAttendance(w, r, err, "attendance_review_failed", "failed to review attendance")
		return
	}

	if err := audit.New(h.DB).Record(r.Context(), user.CompanyID, user.UserID, "attendance."+action, "attendance_record", recordID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), nil); err != nil {
		slog.Warn("audit attendance review failed", "err", err)
	}
	api.Success(w, toDTO(reviewed), middleware.GetRequestID(r.Context()))
}

func (h *Handler) failAttendance(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())

	var validation *attendance.ValidationError
	switch {
	case errors.As(err, &validation):
		api.Fail(w, http.StatusBadRequest, "attendance_invalid", validation.Error(), requestID)
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "attendance_not_found", "attendance record not found", requestID)
	case errors.Is(err, attendance.ErrAlreadyPunchedIn),
		errors.Is(err, attendance.ErrAlreadyPunchedOut),
		errors.Is(err, attendance.ErrNotPunchedIn),
		errors.Is(err, attendance.ErrAlreadyProcessed),
		errors.Is(err, attendance.ErrPeriodClosed):
		api.Fail(w, http.StatusConflict, "attendance_conflict", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
