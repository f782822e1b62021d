package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, seed ...Item) *Service {
	t.Helper()
	return NewService(NewMemStore(seed...), zap.NewNop(), nil)
}

func TestService_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	created, err := s.Create(ctx, []byte(`{"id": 3, "name": "Gear", "price": 4.25, "weight": 1.5, "color": "red"}`))
	require.NoError(t, err)
	assert.Equal(t, Item{ID: 3, Name: "Gear", Price: 4.25, Weight: 1.5}, created)

	got, err := s.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestService_CreateDuplicateKeepsOne(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.Create(ctx, []byte(`{"id": 1, "name": "A", "price": 1, "weight": 1}`))
	require.NoError(t, err)

	_, err = s.Create(ctx, []byte(`{"id": 1, "name": "B", "price": 2, "weight": 2}`))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.EqualError(t, err, "Item with id 1 already exists")

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Name)
}

func TestService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	cases := map[string]struct {
		body string
		msg  string
	}{
		"empty body":    {``, "Request body must be JSON"},
		"null":          {`null`, "Request body must be JSON"},
		"empty object":  {`{}`, "Request body must be JSON"},
		"scalar":        {`42`, "Request body must be JSON"},
		"missing id":    {`{"name": "A", "price": 1, "weight": 1}`, "Missing required fields. Must contain: ['id', 'name', 'price', 'weight']"},
		"fractional id": {`{"id": 1.5, "name": "A", "price": 1, "weight": 1}`, "Field 'id' has an invalid value"},
		"string price":  {`{"id": 1, "name": "A", "price": "cheap", "weight": 1}`, "Field 'price' has an invalid value"},
		"numeric name":  {`{"id": 1, "name": 5, "price": 1, "weight": 1}`, "Field 'name' has an invalid value"},
		"null weight":   {`{"id": 1, "name": "A", "price": 1, "weight": null}`, "Field 'weight' has an invalid value"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, []byte(tc.body))
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			assert.EqualError(t, err, tc.msg)
		})
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Item{ID: 1, Name: "Widget", Price: 9.99, Weight: 0.5})

	got, err := s.Update(ctx, 1, []byte(`{"price": 12.5}`))
	require.NoError(t, err)
	assert.Equal(t, Item{ID: 1, Name: "Widget", Price: 12.5, Weight: 0.5}, got)

	got, err = s.Update(ctx, 1, []byte(`{"id": 9, "name": null, "weight": 2}`))
	require.NoError(t, err)
	assert.Equal(t, Item{ID: 1, Name: "Widget", Price: 12.5, Weight: 2}, got)

	stored, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	_, err = s.Get(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Item{ID: 1, Name: "Widget", Price: 9.99, Weight: 0.5})

	_, err := s.Update(ctx, 1, []byte(`[]`))
	assert.ErrorIs(t, err, ErrNotJSON)

	_, err = s.Update(ctx, 2, []byte(`{"name": "x"}`))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(ctx, 1, []byte(`{"price": "free"}`))
	assert.Equal(t, KindValidation, KindOf(err))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9.99, got.Price)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t,
		Item{ID: 1, Name: "A", Price: 1, Weight: 1},
		Item{ID: 2, Name: "B", Price: 2, Weight: 2},
		Item{ID: 3, Name: "C", Price: 3, Weight: 3},
	)

	res, err := s.Delete(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{Result: true, Message: "Item 2 deleted"}, res)

	_, err = s.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(items))

	_, err = s.Delete(ctx, 2)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestService_ConcurrentCreatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "catalog.json"), zap.NewNop())
	require.NoError(t, store.Init(ctx))
	s := NewService(store, zap.NewNop(), nil)

	const n = 40
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"id": %d, "name": "item-%d", "price": 1, "weight": 1}`, id, id)
			if _, err := s.Create(ctx, []byte(body)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, n)
}

type failingStore struct {
	MemStore
	saveErr error
}

func (f *failingStore) Save(context.Context, []Item) error { return f.saveErr }

func TestService_SaveFailureIsInternal(t *testing.T) {
	boom := errors.New("disk full")
	s := NewService(&failingStore{saveErr: boom}, zap.NewNop(), nil)

	_, err := s.Create(context.Background(), []byte(`{"id": 1, "name": "A", "price": 1, "weight": 1}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, KindOf(err))
}

func TestService_Metrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := NewService(NewMemStore(), zap.NewNop(), reg)

	_, err := s.Create(ctx, []byte(`{"id": 1, "name": "A", "price": 1, "weight": 1}`))
	require.NoError(t, err)
	_, err = s.Create(ctx, []byte(`{"id": 2, "name": "B", "price": 1, "weight": 1}`))
	require.NoError(t, err)
	_, err = s.Delete(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.items))
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.mutations.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.mutations.WithLabelValues("delete")))
}

func ids(items []Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
