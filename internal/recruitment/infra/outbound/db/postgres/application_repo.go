package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	// Driver registrado vía stdlib de pgx en el main.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davicafu/maidlink/internal/recruitment/domain"
	sharedDomain "github.com/davicafu/maidlink/internal/shared/domain"
	outboxPostgres "github.com/davicafu/maidlink/internal/shared/infra/db/postgres"
)

type ApplicationRepoPostgres struct {
	db *sql.DB
}

var _ domain.ApplicationRepository = (*ApplicationRepoPostgres)(nil)

func NewApplicationRepoPostgres(db *sql.DB) *ApplicationRepoPostgres {
	return &ApplicationRepoPostgres{db: db}
}

// InitPostgres crea la tabla del contexto recruitment si no existe.
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS job_applications (
			id UUID PRIMARY KEY,
			job_id UUID NOT NULL,
			maid_id UUID NOT NULL,
			sponsor_id UUID NOT NULL,
			cover_letter TEXT,
			status TEXT NOT NULL,
			interview_scheduled_at TIMESTAMPTZ,
			interview_completed_at TIMESTAMPTZ,
			sponsor_notes TEXT,
			rejection_reason TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_job_applications_maid ON job_applications(maid_id, created_at DESC);
	`)
	return err
}

// Create inserta la candidatura y sus filas outbox en una transacción.
func (r *ApplicationRepoPostgres) Create(ctx context.Context, a *domain.JobApplication, records []sharedDomain.OutboxRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO job_applications
		 (id, job_id, maid_id, sponsor_id, cover_letter, status, interview_scheduled_at, interview_completed_at, sponsor_notes, rejection_reason, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.JobID, a.MaidID, a.SponsorID, a.CoverLetter, string(a.Status),
		a.InterviewScheduledAt, a.InterviewCompletedAt, a.SponsorNotes, a.RejectionReason,
		a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return err
	}

	for _, rec := range records {
		if err = outboxPostgres.InsertOutboxTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ApplicationRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, job_id, maid_id, sponsor_id, cover_letter, status, interview_scheduled_at, interview_completed_at, sponsor_notes, rejection_reason, created_at, updated_at
		 FROM job_applications WHERE id = $1`, id,
	)
	return scanApplication(row)
}

// Update guarda el estado actual y sus filas outbox en una transacción.
func (r *ApplicationRepoPostgres) Update(ctx context.Context, a *domain.JobApplication, records []sharedDomain.OutboxRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`UPDATE job_applications SET
		 cover_letter=$1, status=$2, interview_scheduled_at=$3, interview_completed_at=$4,
		 sponsor_notes=$5, rejection_reason=$6, updated_at=$7
		 WHERE id=$8`,
		a.CoverLetter, string(a.Status), a.InterviewScheduledAt, a.InterviewCompletedAt,
		a.SponsorNotes, a.RejectionReason, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return err
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return err
	}
	if affected == 0 {
		err = domain.ErrApplicationNotFound
		return err
	}

	for _, rec := range records {
		if err = outboxPostgres.InsertOutboxTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByMaid devuelve las candidaturas de una maid, más recientes primero.
func (r *ApplicationRepoPostgres) ListByMaid(ctx context.Context, maidID uuid.UUID, limit, offset int) ([]*domain.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_id, maid_id, sponsor_id, cover_letter, status, interview_scheduled_at, interview_completed_at, sponsor_notes, rejection_reason, created_at, updated_at
		 FROM job_applications
		 WHERE maid_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, maidID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*domain.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*domain.JobApplication, error) {
	var a domain.JobApplication
	var status string
	var coverLetter, sponsorNotes, rejectionReason sql.NullString
	var scheduledAt, completedAt sql.NullTime

	err := row.Scan(&a.ID, &a.JobID, &a.MaidID, &a.SponsorID, &coverLetter, &status,
		&scheduledAt, &completedAt, &sponsorNotes, &rejectionReason, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job application: %w", err)
	}

	a.CoverLetter = coverLetter.String
	a.SponsorNotes = sponsorNotes.String
	a.RejectionReason = rejectionReason.String
	a.Status = domain.ApplicationStatus(status)
	if scheduledAt.Valid {
		t := scheduledAt.Time
		a.InterviewScheduledAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.InterviewCompletedAt = &t
	}
	return &a, nil
}
