package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"gundash/domain/artifact"
	"gundash/domain/core"
	"gundash/internal/errors"
	"gundash/ports"

	"github.com/jmoiron/sqlx"
)

// modelRepository implements the ModelRepository interface
type modelRepository struct {
	db *sqlx.DB
}

// NewModelRepository creates a new model repository
func NewModelRepository(db *sqlx.DB) ports.ModelRepository {
	return &modelRepository{db: db}
}

// modelRow is the intent_models row; the artifact itself travels as JSON
type modelRow struct {
	ID          string  `db:"id"`
	CreatedAt   int64   `db:"created_at"`
	Fingerprint string  `db:"dataset_fingerprint"`
	InputAge    int     `db:"input_age"`
	InputSex    string  `db:"input_sex"`
	InputRace   string  `db:"input_race"`
	Accuracy    float64 `db:"accuracy"`
	Payload     string  `db:"payload"`
}

const modelColumns = `id, created_at, dataset_fingerprint, input_age, input_sex, input_race, accuracy, payload`

// Save inserts a model, replacing any row with the same id
func (r *modelRepository) Save(ctx context.Context, m *artifact.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal model")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM intent_models WHERE id = ?`), m.ID.String()); err != nil {
		return errors.DatabaseError("failed to replace model", err)
	}
	query := r.db.Rebind(`INSERT INTO intent_models (` + modelColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, query,
		m.ID.String(), m.CreatedAt.UnixNano(), m.DatasetFingerprint.String(),
		m.Inputs.Age, m.Inputs.Sex, m.Inputs.Race, m.Accuracy, string(payload),
	)
	if err != nil {
		return errors.DatabaseError("failed to save model", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit model", err)
	}
	return nil
}

// Get retrieves a model by id
func (r *modelRepository) Get(ctx context.Context, id core.ModelID) (*artifact.Model, error) {
	query := r.db.Rebind(`SELECT ` + modelColumns + ` FROM intent_models WHERE id = ?`)
	return r.one(ctx, query, id.String())
}

// Latest retrieves the most recently created model
func (r *modelRepository) Latest(ctx context.Context) (*artifact.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM intent_models ORDER BY created_at DESC LIMIT 1`
	return r.one(ctx, query)
}

// FindByKey retrieves the newest model for a dataset fingerprint and inputs
func (r *modelRepository) FindByKey(ctx context.Context, fingerprint core.Hash, inputs artifact.Inputs) (*artifact.Model, error) {
	query := r.db.Rebind(`SELECT ` + modelColumns + ` FROM intent_models
		WHERE dataset_fingerprint = ? AND input_age = ? AND input_sex = ? AND input_race = ?
		ORDER BY created_at DESC LIMIT 1`)
	return r.one(ctx, query, fingerprint.String(), inputs.Age, inputs.Sex, inputs.Race)
}

// List returns model summaries, newest first
func (r *modelRepository) List(ctx context.Context, limit int) ([]artifact.Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []modelRow
	query := r.db.Rebind(`SELECT ` + modelColumns + ` FROM intent_models ORDER BY created_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.DatabaseError("failed to list models", err)
	}
	out := make([]artifact.Summary, 0, len(rows))
	for _, row := range rows {
		m, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, m.Summary())
	}
	return out, nil
}

// Delete removes a model
func (r *modelRepository) Delete(ctx context.Context, id core.ModelID) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM intent_models WHERE id = ?`), id.String())
	if err != nil {
		return errors.DatabaseError("failed to delete model", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrModelNotFound, id)
	}
	return nil
}

func (r *modelRepository) one(ctx context.Context, query string, args ...any) (*artifact.Model, error) {
	var row modelRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrModelNotFound
		}
		return nil, errors.DatabaseError("failed to get model", err)
	}
	return row.decode()
}

func (row modelRow) decode() (*artifact.Model, error) {
	var m artifact.Model
	if err := json.Unmarshal([]byte(row.Payload), &m); err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to decode stored model %s", row.ID), err)
	}
	m.ID = core.ModelID(row.ID)
	m.CreatedAt = time.Unix(0, row.CreatedAt).UTC()
	return &m, nil
}
