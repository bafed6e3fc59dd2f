package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/davicafu/maidlink/internal/featureflags/domain"
)

// FlagRepoPostgres implementa domain.FlagRepository sobre Postgres.
// Las allow-lists se guardan como JSON para no depender de tipos array.
type FlagRepoPostgres struct {
	db *sql.DB
}

var _ domain.FlagRepository = (*FlagRepoPostgres)(nil)

func NewFlagRepoPostgres(db *sql.DB) *FlagRepoPostgres {
	return &FlagRepoPostgres{db: db}
}

// InitPostgres crea la tabla de flags si no existe.
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS feature_flags (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			rollout_percentage INT NOT NULL DEFAULT 100,
			target_users JSONB NOT NULL DEFAULT '[]',
			target_roles JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (r *FlagRepoPostgres) GetByName(ctx context.Context, name string) (*domain.FeatureFlag, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, enabled, rollout_percentage, target_users, target_roles, created_at, updated_at
		 FROM feature_flags WHERE name = $1`, name,
	)

	var f domain.FeatureFlag
	var targetUsers, targetRoles []byte
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Enabled, &f.RolloutPercentage,
		&targetUsers, &targetRoles, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFlagNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(targetUsers, &f.TargetUsers); err != nil {
		return nil, fmt.Errorf("invalid target_users in flag %q: %w", name, err)
	}
	if err := json.Unmarshal(targetRoles, &f.TargetRoles); err != nil {
		return nil, fmt.Errorf("invalid target_roles in flag %q: %w", name, err)
	}
	return &f, nil
}
