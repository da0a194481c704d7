package postgres

import (
	"context"
	"os"
	"testing"

	"kickpredict/domain/ratetable"
	"kickpredict/ports"
	"kickpredict/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and skips when it is unset
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, migration.NewRunner().Run(ctx, db))
	_, err = db.ExecContext(ctx, "TRUNCATE rate_tables, model_artifacts, training_reports")
	require.NoError(t, err)
	return db
}

func TestArtifactRepository_RateTables(t *testing.T) {
	db := openTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	first := ratetable.Set{
		ByCategory: ratetable.New(ratetable.NameByCategory, map[string]float64{"Games": 250, "Music": 1000}),
		ByCountry:  ratetable.New(ratetable.NameByCountry, map[string]float64{"US": 500}),
	}
	require.NoError(t, repo.SaveRateTables(ctx, first))

	second := ratetable.Set{
		ByCategory: ratetable.New(ratetable.NameByCategory, map[string]float64{"Art": 75}),
		ByCountry:  ratetable.New(ratetable.NameByCountry, map[string]float64{"GB": 90}),
	}
	require.NoError(t, repo.SaveRateTables(ctx, second))

	loaded, err := repo.LoadRateTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ByCategory.Entries(), loaded.ByCategory.Entries())
	assert.Equal(t, second.ByCountry.Entries(), loaded.ByCountry.Entries())
	assert.Equal(t, second.Fingerprint(), loaded.Fingerprint())
}

func TestArtifactRepository_ModelAndReport(t *testing.T) {
	db := openTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	_, err := repo.LoadModel(ctx)
	assert.Error(t, err)

	require.NoError(t, repo.SaveModel(ctx, []byte(`{"format":"logistic-regression"}`)))
	payload, err := repo.LoadModel(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"logistic-regression"}`, string(payload))

	require.NoError(t, repo.SaveReport(ctx, []byte("# Training report")))
	report, err := repo.LoadReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Training report", string(report))
}

func TestArtifactRepository_SaveRunIsAtomic(t *testing.T) {
	db := openTestDB(t)
	repo := NewArtifactRepository(db)
	ctx := context.Background()

	first := ratetable.Set{
		ByCategory: ratetable.New(ratetable.NameByCategory, map[string]float64{"Games": 250}),
		ByCountry:  ratetable.New(ratetable.NameByCountry, map[string]float64{"US": 500}),
	}
	require.NoError(t, repo.SaveRun(ctx, ports.RunArtifacts{
		RunID:  "first",
		Tables: first,
		Model:  []byte(`{"run":"first"}`),
		Report: []byte("# first"),
	}))

	// payload is not valid JSONB, so the insert fails after the tables were replaced
	err := repo.SaveRun(ctx, ports.RunArtifacts{
		RunID: "second",
		Tables: ratetable.Set{
			ByCategory: ratetable.New(ratetable.NameByCategory, map[string]float64{"Art": 75}),
			ByCountry:  ratetable.New(ratetable.NameByCountry, map[string]float64{"GB": 90}),
		},
		Model:  []byte("not json"),
		Report: []byte("# second"),
	})
	require.Error(t, err)

	tables, err := repo.LoadRateTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint(), tables.Fingerprint())

	payload, err := repo.LoadModel(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"run":"first"}`, string(payload))

	report, err := repo.LoadReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# first", string(report))
}
