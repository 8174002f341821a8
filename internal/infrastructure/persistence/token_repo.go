package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/pkg/errcodes"
)

// TokenRepository токены краулера и их события.
type TokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Get(ctx context.Context, address string) (*entity.TrackedToken, error) {
	query := `SELECT * FROM tracked_tokens WHERE address = $1`

	var schema trackedTokenSchema
	if err := r.db.GetContext(ctx, &schema, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.TokenNotFound, "token not tracked")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get tracked token")
	}

	return schema.toDomain(), nil
}

// Upsert пишет снимок токена. Поля first_seen_at, initial_* и признак rug
// сохраняются с первой записи и возвращаются в token. Результат true, если
// строка вставлена впервые.
func (r *TokenRepository) Upsert(ctx context.Context, token *entity.TrackedToken) (bool, error) {
	schema := fromTrackedToken(token)
	now := time.Now().UTC()

	if schema.FirstSeenAt.IsZero() {
		schema.FirstSeenAt = now
	}

	if schema.UpdatedAt.IsZero() {
		schema.UpdatedAt = now
	}

	query := `
		INSERT INTO tracked_tokens (
			address, symbol, name, decimals, total_supply, first_seen_at,
			initial_holders, initial_top_holder_pct, initial_liquidity_usd,
			current_holders, current_top_holder_pct, current_price_usd,
			safety_level, safety_score, updated_at
		) VALUES (
			:address, :symbol, :name, :decimals, :total_supply, :first_seen_at,
			:initial_holders, :initial_top_holder_pct, :initial_liquidity_usd,
			:current_holders, :current_top_holder_pct, :current_price_usd,
			:safety_level, :safety_score, :updated_at
		)
		ON CONFLICT (address) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			total_supply = EXCLUDED.total_supply,
			current_holders = EXCLUDED.current_holders,
			current_top_holder_pct = EXCLUDED.current_top_holder_pct,
			current_price_usd = EXCLUDED.current_price_usd,
			safety_level = EXCLUDED.safety_level,
			safety_score = EXCLUDED.safety_score,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS inserted, first_seen_at, initial_holders,
			initial_top_holder_pct, initial_liquidity_usd, rugged, rugged_at`

	named, args, err := sqlx.Named(query, schema)
	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to bind tracked token")
	}

	var stored struct {
		Inserted            bool         `db:"inserted"`
		FirstSeenAt         time.Time    `db:"first_seen_at"`
		InitialHolders      int          `db:"initial_holders"`
		InitialTopHolderPct float64      `db:"initial_top_holder_pct"`
		InitialLiquidityUSD float64      `db:"initial_liquidity_usd"`
		Rugged              bool         `db:"rugged"`
		RuggedAt            sql.NullTime `db:"rugged_at"`
	}

	if err := r.db.GetContext(ctx, &stored, r.db.Rebind(named), args...); err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to upsert tracked token")
	}

	token.FirstSeenAt = stored.FirstSeenAt.UTC()
	token.InitialHolders = stored.InitialHolders
	token.InitialTopHolderPct = stored.InitialTopHolderPct
	token.InitialLiquidityUSD = stored.InitialLiquidityUSD
	token.Rugged = stored.Rugged
	token.RuggedAt = nil

	if stored.RuggedAt.Valid {
		at := stored.RuggedAt.Time.UTC()
		token.RuggedAt = &at
	}

	return stored.Inserted, nil
}

// MarkRugged повторная пометка ничего не меняет.
func (r *TokenRepository) MarkRugged(ctx context.Context, address string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE tracked_tokens
			SET rugged = TRUE, rugged_at = $1, updated_at = $1
			WHERE address = $2 AND NOT rugged`

		res, err := tx.ExecContext(ctx, query, at, address)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to mark token rugged")
		}

		rows, _ := res.RowsAffected()
		if rows == 0 {
			var exists bool
			_ = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tracked_tokens WHERE address = $1)`, address)
			if !exists {
				return domain.NewError(errcodes.TokenNotFound, "token not tracked")
			}
		}
		return nil
	})
}

func (r *TokenRepository) AddEvent(ctx context.Context, event *entity.TokenEvent) error {
	schema, err := fromTokenEvent(event)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to encode token event")
	}

	if schema.CreatedAt.IsZero() {
		schema.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO token_events (token_address, kind, payload, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := r.db.GetContext(ctx, &event.ID, query,
		schema.TokenAddress, schema.Kind, string(schema.Payload), schema.CreatedAt,
	); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to add token event")
	}

	event.CreatedAt = schema.CreatedAt

	return nil
}

// ListRecent последние найденные токены, новые первыми.
func (r *TokenRepository) ListRecent(ctx context.Context, limit int, includeRugged bool) ([]entity.TrackedToken, error) {
	query := `
		SELECT * FROM tracked_tokens
		WHERE $2 OR NOT rugged
		ORDER BY first_seen_at DESC, address ASC
		LIMIT $1`

	var schemas []trackedTokenSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit, includeRugged); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list tracked tokens")
	}

	result := make([]entity.TrackedToken, 0, len(schemas))
	for _, s := range schemas {
		result = append(result, *s.toDomain())
	}
	return result, nil
}

// ListEvents события токена, новые первыми.
func (r *TokenRepository) ListEvents(ctx context.Context, address string, limit int) ([]entity.TokenEvent, error) {
	query := `
		SELECT id, token_address, kind, payload, created_at FROM token_events
		WHERE token_address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	var schemas []tokenEventSchema
	if err := r.db.SelectContext(ctx, &schemas, query, address, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list token events")
	}

	result := make([]entity.TokenEvent, 0, len(schemas))
	for _, s := range schemas {
		ev, err := s.toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to decode token event")
		}
		result = append(result, *ev)
	}
	return result, nil
}
