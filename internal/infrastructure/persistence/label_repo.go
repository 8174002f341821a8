package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/pkg/errcodes"
)

// LabelRepository метки известных адресов из known_wallets.
type LabelRepository struct {
	db *sqlx.DB
}

func NewLabelRepository(db *sqlx.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Lookup читает метку без кэширования. Отсутствие метки LabelNotFound.
func (r *LabelRepository) Lookup(ctx context.Context, address string) (*entity.LabelRecord, error) {
	query := `SELECT address, label, owner_name, notes, created_at FROM known_wallets WHERE address = $1`

	var schema labelSchema
	if err := r.db.GetContext(ctx, &schema, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.LabelNotFound, "label not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get label")
	}

	return schema.toDomain(), nil
}

const upsertLabelQuery = `
	INSERT INTO known_wallets (address, label, owner_name, notes)
	VALUES (:address, :label, :owner_name, :notes)
	ON CONFLICT (address) DO UPDATE SET
		label = EXCLUDED.label,
		owner_name = COALESCE(EXCLUDED.owner_name, known_wallets.owner_name),
		notes = COALESCE(EXCLUDED.notes, known_wallets.notes)`

// Upsert категория перезаписывается, пустые owner_name и notes не затирают
// сохранённые.
func (r *LabelRepository) Upsert(ctx context.Context, record *entity.LabelRecord) error {
	if _, err := r.db.NamedExecContext(ctx, upsertLabelQuery, fromLabelRecord(record)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert label")
	}

	return nil
}

// UpsertMany пишет метки одной транзакцией.
func (r *LabelRepository) UpsertMany(ctx context.Context, records []entity.LabelRecord) (int, error) {
	var n int

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, upsertLabelQuery)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to prepare label upsert")
		}
		defer stmt.Close()

		for i := range records {
			if _, err := stmt.ExecContext(ctx, fromLabelRecord(&records[i])); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert label "+records[i].Address)
			}
			n++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return n, nil
}

// CountByCategory число меток по категориям.
func (r *LabelRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Label string `db:"label"`
		Count int    `db:"count"`
	}

	query := `SELECT label, COUNT(*) AS count FROM known_wallets GROUP BY label`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to count labels")
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}

	return counts, nil
}

func (r *LabelRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return withTx(ctx, r.db, fn)
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}
	return nil
}
