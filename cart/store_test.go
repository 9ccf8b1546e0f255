package cart

import (
	"context"
	"sync"
	"testing"

	"autoparts-storefront/models"
	"autoparts-storefront/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDispatchPersists(t *testing.T) {
	repo := repository.NewMemoryStateRepository()
	store := NewStore(repo)
	ctx := context.Background()

	added := 0
	store.OnAdd(func(n int) { added += n })

	require.NoError(t, store.Add(ctx, "s1",
		models.CartLine{ID: 1, Name: "Brake Pad", Price: 19.5, Quantity: 2},
		models.CartLine{ID: 1, Name: "Brake Pad", Price: 19.5, Quantity: 1},
		models.CartLine{ID: 2, Name: "Oil Filter", Price: 7, Quantity: 1},
	))
	assert.Equal(t, 3, added)

	// A fresh store over the same repository sees the same cart
	other := NewStore(repo)
	summary, err := other.Summary(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, 4, summary.ItemCount)
	assert.InDelta(t, 65.5, summary.Subtotal, 0.0001)

	lines, err := store.Dispatch(ctx, "s1", Decrement(1), Remove(2))
	require.NoError(t, err)
	assert.Equal(t, []models.CartLine{{ID: 1, Name: "Brake Pad", Price: 19.5, Quantity: 2}}, lines)

	empty, err := store.Lines(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = store.Dispatch(ctx, "s1", Clear())
	require.NoError(t, err)
	_, err = repo.Load(ctx, "s1", repository.KindCart)
	assert.ErrorIs(t, err, repository.ErrStateNotFound)
}

func TestStoreDiscardsCorruptedData(t *testing.T) {
	repo := repository.NewMemoryStateRepository()
	ctx := context.Background()

	for _, payload := range []string{`{not json`, `[{"id":1,"quantity":0}]`, `{"id":1}`} {
		require.NoError(t, repo.Save(ctx, "s1", repository.KindCart, []byte(payload)))

		lines, err := NewStore(repo).Lines(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, lines, payload)

		_, err = repo.Load(ctx, "s1", repository.KindCart)
		assert.ErrorIs(t, err, repository.ErrStateNotFound)
	}
}

func TestStoreConcurrentAdds(t *testing.T) {
	store := NewStore(repository.NewMemoryStateRepository())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, "s1", models.CartLine{ID: 7, Name: "Spark Plug", Price: 3, Quantity: 1})
		}()
	}
	wg.Wait()

	lines, err := store.Lines(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 50, lines[0].Quantity)
}
