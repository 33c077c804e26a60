package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"staffpay/internal/domain/payroll"
	"staffpay/internal/platform/config"
	"staffpay/internal/platform/metrics"
)

const JobPayrollSweep = "payroll_sweep"

// Service runs background work: a queue worker plus the scheduled payroll
// sweep that keeps last month's pending salary records current.
type Service struct {
	DB      *pgxpool.Pool
	Cfg     config.Config
	Payroll *payroll.Service
	Metrics *metrics.Collector
	queue   chan job
	now     func() time.Time
}

type job struct {
	Type      string
	CompanyID string
	Run       func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, payrollSvc *payroll.Service, collector *metrics.Collector) *Service {
	return &Service{
		DB:      db,
		Cfg:     cfg,
		Payroll: payrollSvc,
		Metrics: collector,
		queue:   make(chan job, 128),
		now:     time.Now,
	}
}

// previousPeriod anchors to the first of the month before subtracting, so
// month-end dates do not normalize into the current month.
func previousPeriod(now time.Time) payroll.Period {
	now = now.UTC()
	prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return payroll.NewPeriod(prev.Year(), prev.Month())
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.PayrollRunInterval > 0 {
		go s.schedulePayrollSweep(ctx, s.Cfg.PayrollRunInterval)
	}
}

func (s *Service) Enqueue(jobType, companyID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, CompanyID: companyID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "companyId", companyID)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "companyId", j.CompanyID, "err", err)
			}
		}
	}
}

func (s *Service) schedulePayrollSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobPayrollSweep, "", s.sweepAllCompanies)
		}
	}
}

// sweepAllCompanies recalculates last month's salary for every active
// staff member whose record is still pending (or missing). Approved and
// paid records are left alone; the service's state gate guarantees it.
func (s *Service) sweepAllCompanies(ctx context.Context) (any, error) {
	period := previousPeriod(s.now())

	rows, err := s.DB.Query(ctx, `
    SELECT st.id
    FROM staff st
    LEFT JOIN salary_records r
      ON r.staff_id = st.id AND r.year = $1 AND r.month = $2
    WHERE st.status = 'active'
      AND (r.id IS NULL OR r.status = 'pending')
  `, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staffIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		staffIDs = append(staffIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	calculated, failed := 0, 0
	for _, staffID := range staffIDs {
		if _, _, err := s.Payroll.RunCalculation(ctx, staffID, period); err != nil {
			failed++
			slog.Warn("payroll sweep calculation failed", "staffId", staffID, "period", period.String(), "err", err)
			continue
		}
		calculated++
		if s.Metrics != nil {
			s.Metrics.RecordPayrollRun()
		}
	}
	return map[string]int{"calculated": calculated, "failed": failed}, nil
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	var companyID any
	if j.CompanyID != "" {
		companyID = j.CompanyID
	}
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (company_id, job_type, status)
    VALUES ($1,$2,'running')
    RETURNING id
  `, companyID, j.Type).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs SET status = $2, details = $3, finished_at = now()
      WHERE id = $1
    `, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}
