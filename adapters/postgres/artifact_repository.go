package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kickpredict/domain/core"
	"kickpredict/domain/features"
	"kickpredict/domain/ratetable"
	"kickpredict/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// rateRow is one key of a persisted rate table
type rateRow struct {
	Name     string  `db:"name"`
	Key      string  `db:"key"`
	MeanGoal float64 `db:"mean_goal"`
}

// ArtifactRepositoryImpl implements ports.ArtifactStore for PostgreSQL
type ArtifactRepositoryImpl struct {
	db *sqlx.DB
}

// NewArtifactRepository creates a new PostgreSQL artifact repository
func NewArtifactRepository(db *sqlx.DB) ports.ArtifactStore {
	return &ArtifactRepositoryImpl{db: db}
}

// SaveRun replaces the rate tables and appends the model and report in one
// transaction, so readers see either the previous run or this one.
func (r *ArtifactRepositoryImpl) SaveRun(ctx context.Context, run ports.RunArtifacts) error {
	if err := run.Tables.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceRateTables(ctx, tx, run.Tables); err != nil {
		return err
	}
	if err := insertModel(ctx, tx, run.Model); err != nil {
		return err
	}
	if err := insertReport(ctx, tx, run.Report); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.RunID, err)
	}
	return nil
}

// SaveRateTables replaces both tables in one transaction
func (r *ArtifactRepositoryImpl) SaveRateTables(ctx context.Context, tables ratetable.Set) error {
	if err := tables.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := replaceRateTables(ctx, tx, tables); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceRateTables(ctx context.Context, tx *sqlx.Tx, tables ratetable.Set) error {
	names := []string{ratetable.NameByCategory, ratetable.NameByCountry}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rate_tables WHERE name = ANY($1)`, pq.Array(names)); err != nil {
		return fmt.Errorf("failed to clear rate tables: %w", err)
	}

	for _, t := range tables.Tables() {
		rows := make([]rateRow, 0, t.Len())
		for _, key := range t.Keys() {
			mean, _ := t.Lookup(key)
			rows = append(rows, rateRow{Name: t.Name(), Key: key, MeanGoal: mean})
		}
		if len(rows) == 0 {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO rate_tables (name, key, mean_goal)
			VALUES (:name, :key, :mean_goal)
		`, rows); err != nil {
			return fmt.Errorf("failed to insert rate table %s: %w", t.Name(), err)
		}
	}
	return nil
}

// LoadRateTables reads both tables. A database without any rows for a table
// is reported as not found.
func (r *ArtifactRepositoryImpl) LoadRateTables(ctx context.Context) (ratetable.Set, error) {
	var rows []rateRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT name, key, mean_goal
		FROM rate_tables
		ORDER BY name, key
	`); err != nil {
		return ratetable.Set{}, fmt.Errorf("failed to load rate tables: %w", err)
	}

	means := map[string]map[string]float64{
		ratetable.NameByCategory: {},
		ratetable.NameByCountry:  {},
	}
	for _, row := range rows {
		if m, ok := means[row.Name]; ok {
			m[row.Key] = row.MeanGoal
		}
	}
	for name, m := range means {
		if len(m) == 0 {
			return ratetable.Set{}, core.NewNotFoundError("rate table", name)
		}
	}

	set := ratetable.Set{
		ByCategory: ratetable.New(ratetable.NameByCategory, means[ratetable.NameByCategory]),
		ByCountry:  ratetable.New(ratetable.NameByCountry, means[ratetable.NameByCountry]),
	}
	return set, set.Validate()
}

// SaveModel appends a new artifact row; the latest row wins on load
func (r *ArtifactRepositoryImpl) SaveModel(ctx context.Context, payload []byte) error {
	return insertModel(ctx, r.db, payload)
}

func insertModel(ctx context.Context, db sqlx.ExecerContext, payload []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO model_artifacts (id, schema_version, payload, created_at)
		VALUES ($1, $2, $3, NOW())
	`, core.NewID().String(), features.SchemaVersion, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save model artifact: %w", err)
	}
	return nil
}

// LoadModel returns the most recent artifact
func (r *ArtifactRepositoryImpl) LoadModel(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `
		SELECT payload
		FROM model_artifacts
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("artifact", "model")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model artifact: %w", err)
	}
	return payload, nil
}

// SaveReport appends a new training report
func (r *ArtifactRepositoryImpl) SaveReport(ctx context.Context, markdown []byte) error {
	return insertReport(ctx, r.db, markdown)
}

func insertReport(ctx context.Context, db sqlx.ExecerContext, markdown []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO training_reports (id, body, created_at)
		VALUES ($1, $2, NOW())
	`, core.NewID().String(), string(markdown))
	if err != nil {
		return fmt.Errorf("failed to save training report: %w", err)
	}
	return nil
}

// LoadReport returns the most recent training report
func (r *ArtifactRepositoryImpl) LoadReport(ctx context.Context) ([]byte, error) {
	var body string
	err := r.db.GetContext(ctx, &body, `
		SELECT body
		FROM training_reports
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("artifact", "training report")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load training report: %w", err)
	}
	return []byte(body), nil
}
