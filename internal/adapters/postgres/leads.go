// Package postgres persists leads: callers who left the booking path but
// should get a follow-up. Leads are the one durable record this service owns;
// appointments live in the external calendar.
package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belmontfield/dispatch/internal/domain"
)

type LeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

const leadsSchema = `
CREATE TABLE IF NOT EXISTS leads (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	address_line1 TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	zip TEXT NOT NULL DEFAULT '',
	system_type TEXT NOT NULL DEFAULT '',
	symptom TEXT NOT NULL DEFAULT '',
	issue_summary TEXT NOT NULL DEFAULT '',
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the leads table when missing.
func (r *LeadRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, leadsSchema)
	return err
}

func (r *LeadRepository) Create(ctx context.Context, lead domain.Lead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (id, full_name, phone, email, address_line1, city, zip, system_type, symptom, issue_summary, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, lead.ID, lead.Customer.FullName, lead.Customer.Phone, lead.Customer.Email,
		lead.Location.AddressLine1, lead.Location.City, lead.Location.Zip,
		lead.Job.SystemType, lead.Job.Symptom, lead.Job.IssueSummary,
		lead.Reason, lead.CreatedAt)
	return err
}

func (r *LeadRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, full_name, phone, email, address_line1, city, zip, system_type, symptom, issue_summary, reason, created_at
		FROM leads WHERE id = $1
	`, id).Scan(&lead.ID, &lead.Customer.FullName, &lead.Customer.Phone, &lead.Customer.Email,
		&lead.Location.AddressLine1, &lead.Location.City, &lead.Location.Zip,
		&lead.Job.SystemType, &lead.Job.Symptom, &lead.Job.IssueSummary,
		&lead.Reason, &lead.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) List(ctx context.Context, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, phone, email, address_line1, city, zip, system_type, symptom, issue_summary, reason, created_at
		FROM leads ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(&lead.ID, &lead.Customer.FullName, &lead.Customer.Phone, &lead.Customer.Email,
			&lead.Location.AddressLine1, &lead.Location.City, &lead.Location.Zip,
			&lead.Job.SystemType, &lead.Job.Symptom, &lead.Job.IssueSummary,
			&lead.Reason, &lead.CreatedAt); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
