package repository

import (
	"context"
	"os"
	"testing"

	"autoparts-storefront/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateRepositories(t *testing.T) map[string]StateRepositoryInterface {
	t.Helper()

	pebbleRepo, err := NewPebbleStateRepository(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pebbleRepo.Close() })

	repos := map[string]StateRepositoryInterface{
		"memory": NewMemoryStateRepository(),
		"pebble": pebbleRepo,
	}

	// Postgres runs only when a scratch database is provided
	if dsn := os.Getenv("STOREFRONT_TEST_DATABASE_URL"); dsn != "" {
		require.NoError(t, db.InitDB(context.Background(), dsn))
		require.NoError(t, db.Migrate(context.Background()))
		t.Cleanup(func() {
			_, _ = db.DB.Exec(`DELETE FROM storefront_state WHERE owner LIKE 'test-%'`)
			_ = db.CloseDB()
		})
		repos["postgres"] = NewPostgresStateRepository(nil)
	}
	return repos
}

func TestStateRepositories(t *testing.T) {
	for name, repo := range stateRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.Load(ctx, "test-owner", KindCart)
			assert.ErrorIs(t, err, ErrStateNotFound)

			require.NoError(t, repo.Save(ctx, "test-owner", KindCart, []byte(`[{"id":1}]`)))
			require.NoError(t, repo.Save(ctx, "test-owner", KindWishlist, []byte(`["9"]`)))

			got, err := repo.Load(ctx, "test-owner", KindCart)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":1}]`, string(got))

			require.NoError(t, repo.Save(ctx, "test-owner", KindCart, []byte(`[]`)))
			got, err = repo.Load(ctx, "test-owner", KindCart)
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(got))

			_, err = repo.Load(ctx, "test-other", KindCart)
			assert.ErrorIs(t, err, ErrStateNotFound)

			require.NoError(t, repo.Delete(ctx, "test-owner", KindCart))
			_, err = repo.Load(ctx, "test-owner", KindCart)
			assert.ErrorIs(t, err, ErrStateNotFound)
			require.NoError(t, repo.Delete(ctx, "test-owner", KindCart))

			got, err = repo.Load(ctx, "test-owner", KindWishlist)
			require.NoError(t, err)
			assert.JSONEq(t, `["9"]`, string(got))
		})
	}
}

func TestPebbleStateRepositoryReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewPebbleStateRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, "a", KindCart, []byte(`[1]`)))
	require.NoError(t, repo.Save(ctx, "b", KindCart, []byte(`[2]`)))
	require.NoError(t, repo.Save(ctx, "a", KindWishlist, []byte(`[]`)))
	require.NoError(t, repo.Close())

	repo, err = NewPebbleStateRepository(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	got, err := repo.Load(ctx, "b", KindCart)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	owners, err := repo.Owners(KindCart)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, owners)
}

func TestMemoryStateRepositoryCopiesPayload(t *testing.T) {
	repo := NewMemoryStateRepository()
	payload := []byte(`[1]`)
	require.NoError(t, repo.Save(context.Background(), "o", KindCart, payload))
	payload[1] = '9'

	got, err := repo.Load(context.Background(), "o", KindCart)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}
