package persistence_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/internal/infrastructure/persistence"
	"memescan/pkg/dbtest"
	"memescan/pkg/errcodes"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("integration test: requires docker")
	}

	rq := require.New(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("memescan"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	rq.NoError(err)

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("container.Terminate: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	rq.NoError(err)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	rq.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	rq.NoError(dbtest.MigrateFromFile(db, migrationPath(t)))

	return db
}

func migrationPath(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations", "001_init.sql")
}

func TestLabelRepository(t *testing.T) {
	db := setupDB(t)
	repo := persistence.NewLabelRepository(db)
	ctx := context.Background()

	t.Run("missing address is LabelNotFound", func(t *testing.T) {
		rq := require.New(t)

		_, err := repo.Lookup(ctx, "EQmissing")
		rq.True(domain.HasCode(err, errcodes.LabelNotFound))
	})

	t.Run("upsert keeps owner and notes when new values are empty", func(t *testing.T) {
		rq := require.New(t)

		rq.NoError(repo.Upsert(ctx, &entity.LabelRecord{
			Address:   "EQacme",
			Category:  value.CategoryCEX,
			OwnerName: "Acme Exchange",
			Notes:     `{"website":"acme.io"}`,
		}))

		rq.NoError(repo.Upsert(ctx, &entity.LabelRecord{
			Address:  "EQacme",
			Category: value.CategoryScammer,
		}))

		rec, err := repo.Lookup(ctx, "EQacme")
		rq.NoError(err)
		rq.Equal(value.CategoryScammer, rec.Category)
		rq.Equal("Acme Exchange", rec.OwnerName)
		rq.Equal("acme.io", entity.ParseLabelNotes(rec.Notes).Website)
		rq.False(rec.CreatedAt.IsZero())
	})

	t.Run("upsert many in one transaction", func(t *testing.T) {
		rq := require.New(t)

		n, err := repo.UpsertMany(ctx, []entity.LabelRecord{
			{Address: "EQdex1", Category: value.CategoryDEX, OwnerName: "DEX One"},
			{Address: "EQdex2", Category: value.CategoryDEX},
		})
		rq.NoError(err)
		rq.Equal(2, n)

		counts, err := repo.CountByCategory(ctx)
		rq.NoError(err)
		rq.Equal(2, counts[string(value.CategoryDEX)])
	})
}

func TestTokenRepository(t *testing.T) {
	db := setupDB(t)
	repo := persistence.NewTokenRepository(db)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("upsert keeps initial snapshot", func(t *testing.T) {
		rq := require.New(t)

		created, err := repo.Upsert(ctx, &entity.TrackedToken{
			Address:             "EQtok",
			Symbol:              "TOK",
			FirstSeenAt:         first,
			InitialHolders:      100,
			InitialTopHolderPct: 40,
			CurrentHolders:      100,
			CurrentTopHolderPct: 40,
			SafetyLevel:         value.SafetyWarning,
			SafetyScore:         35,
		})
		rq.NoError(err)
		rq.True(created)

		next := &entity.TrackedToken{
			Address:             "EQtok",
			Symbol:              "TOK",
			FirstSeenAt:         first.Add(time.Hour),
			InitialHolders:      5,
			InitialTopHolderPct: 1,
			CurrentHolders:      5,
			CurrentTopHolderPct: 1,
			SafetyLevel:         value.SafetySafe,
			SafetyScore:         70,
		}

		created, err = repo.Upsert(ctx, next)
		rq.NoError(err)
		rq.False(created)
		rq.Equal(100, next.InitialHolders)
		rq.True(next.FirstSeenAt.Equal(first))

		got, err := repo.Get(ctx, "EQtok")
		rq.NoError(err)
		rq.Equal(100, got.InitialHolders)
		rq.InDelta(40.0, got.InitialTopHolderPct, 1e-9)
		rq.Equal(5, got.CurrentHolders)
		rq.Equal(value.SafetySafe, got.SafetyLevel)
		rq.Equal(entity.UnknownName, got.Name)
	})

	t.Run("rug marking and events", func(t *testing.T) {
		rq := require.New(t)

		rq.NoError(repo.AddEvent(ctx, &entity.TokenEvent{
			TokenAddress: "EQtok",
			Kind:         entity.TokenEventDeploy,
			Payload:      map[string]any{"symbol": "TOK"},
			CreatedAt:    first,
		}))

		rugAt := first.Add(2 * time.Hour)
		rq.NoError(repo.MarkRugged(ctx, "EQtok", rugAt))
		rq.NoError(repo.MarkRugged(ctx, "EQtok", rugAt.Add(time.Hour)))

		ev := &entity.TokenEvent{
			TokenAddress: "EQtok",
			Kind:         entity.TokenEventRug,
			Payload:      map[string]any{"detection_method": "dev_exit"},
			CreatedAt:    rugAt,
		}
		rq.NoError(repo.AddEvent(ctx, ev))
		rq.NotZero(ev.ID)

		got, err := repo.Get(ctx, "EQtok")
		rq.NoError(err)
		rq.True(got.Rugged)
		rq.True(got.RuggedAt.Equal(rugAt))

		events, err := repo.ListEvents(ctx, "EQtok", 10)
		rq.NoError(err)
		rq.Len(events, 2)
		rq.Equal(entity.TokenEventRug, events[0].Kind)
		rq.Equal("dev_exit", events[0].Payload["detection_method"])

		all, err := repo.ListRecent(ctx, 10, true)
		rq.NoError(err)
		rq.Len(all, 1)

		candidates, err := repo.ListRecent(ctx, 10, false)
		rq.NoError(err)
		rq.Empty(candidates)
	})

	t.Run("missing token", func(t *testing.T) {
		rq := require.New(t)

		_, err := repo.Get(ctx, "EQnope")
		rq.True(domain.HasCode(err, errcodes.TokenNotFound))

		err = repo.MarkRugged(ctx, "EQnope", first)
		rq.True(domain.HasCode(err, errcodes.TokenNotFound))
	})
}
