package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder writes one audit row per privileged action. Payroll approvals,
// payments, and ledger postings all leave a trail here.
type Recorder struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Recorder {
	return &Recorder{DB: db}
}

func (r *Recorder) Record(ctx context.Context, companyID, actorID, action, entityType, entityID, requestID, clientIP string, details any) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	_, err = r.DB.Exec(ctx, `
    INSERT INTO audit_log (company_id, actor_id, action, entity_type, entity_id, request_id, client_ip, details)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, companyID, actorID, action, entityType, entityID, requestID, clientIP, detailsJSON)
	return err
}
