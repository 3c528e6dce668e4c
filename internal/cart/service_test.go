package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	pkgerrors "github.com/JKPrasad01/FoodAppFrontend/pkg/errors"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/logger"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/metrics"
	"github.com/JKPrasad01/FoodAppFrontend/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	storage.Store
	failWrites bool
	writes     int
}

func (f *flakyStore) Write(ctx context.Context, key storage.Key, value []byte) error {
	f.writes++
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Store.Write(ctx, key, value)
}

func (f *flakyStore) Remove(ctx context.Context, key storage.Key) error {
	f.writes++
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Store.Remove(ctx, key)
}

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.Scope(storage.NewMemory(), "visitor-1")
	require.NoError(t, err)
	return store
}

func newTestService(t *testing.T, store storage.Store) Service {
	t.Helper()
	svc, err := NewService(store, logger.Nop(), metrics.NewStorefront(prometheus.NewRegistry()))
	require.NoError(t, err)
	return svc
}

func item(id, restaurantID int64, price string) LineItem {
	return LineItem{
		ItemID:       id,
		Name:         "dish",
		UnitPrice:    decimal.RequireFromString(price),
		RestaurantID: restaurantID,
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(nil, logger.Nop(), nil)
	require.Error(t, err)

	_, err = NewService(newTestStore(t), nil, nil)
	require.Error(t, err)
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	_, err := svc.AddItem(ctx, item(1, 7, "10.50"), 7)
	require.NoError(t, err)
	state, err := svc.AddItem(ctx, item(1, 7, "10.50"), 7)
	require.NoError(t, err)

	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
	require.NotNil(t, state.RestaurantID)
	assert.Equal(t, int64(7), *state.RestaurantID)
	assert.True(t, decimal.RequireFromString("21").Equal(svc.Total()))
	assert.Equal(t, 2, svc.Count())
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	for _, id := range []int64{3, 1, 2} {
		_, err := svc.AddItem(ctx, item(id, 7, "1"), 7)
		require.NoError(t, err)
	}
	_, err := svc.AddItem(ctx, item(1, 7, "1"), 7)
	require.NoError(t, err)

	state := svc.State()
	ids := make([]int64, 0, len(state.Items))
	for _, line := range state.Items {
		ids = append(ids, line.ItemID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestAddItemRejectsOtherRestaurant(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: newTestStore(t)}
	svc := newTestService(t, store)

	_, err := svc.AddItem(ctx, item(1, 7, "5"), 7)
	require.NoError(t, err)
	writes := store.writes

	state, err := svc.AddItem(ctx, item(2, 8, "5"), 8)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRestaurantMismatch))
	assert.Contains(t, err.Error(), "(ID: 7)")
	require.Len(t, state.Items, 1)
	assert.Equal(t, int64(1), state.Items[0].ItemID)
	assert.Equal(t, writes, store.writes, "rejected add must not persist")
}

func TestAddItemAfterClearAcceptsNewRestaurant(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	_, err := svc.AddItem(ctx, item(1, 7, "5"), 7)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	state, err := svc.AddItem(ctx, item(2, 8, "5"), 8)
	require.NoError(t, err)
	require.NotNil(t, state.RestaurantID)
	assert.Equal(t, int64(8), *state.RestaurantID)
}

func TestAddItemValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	cases := map[string]struct {
		item         LineItem
		restaurantID int64
	}{
		"missing restaurant": {item: item(1, 0, "5"), restaurantID: 0},
		"missing item id":    {item: item(0, 7, "5"), restaurantID: 7},
		"zero price":         {item: item(1, 7, "0"), restaurantID: 7},
		"mismatched stamp":   {item: item(1, 9, "5"), restaurantID: 7},
		"blank name": {item: LineItem{
			ItemID: 1, Name: "  ", UnitPrice: decimal.NewFromInt(5), RestaurantID: 7,
		}, restaurantID: 7},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, tc.item, tc.restaurantID)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidInput))
			assert.True(t, svc.State().IsEmpty())
		})
	}
}

func TestAdjustQuantityRemovesAtZero(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newTestStore(t))

	_, err := svc.AddItem(ctx, item(1, 7, "4"), 7)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, item(2, 7, "6"), 7)
	require.NoError(t, err)

	state, err := svc.AdjustQuantity(ctx, 1, 2)
	require.NoError(t, err)
	line, ok := state.Find(1)
	require.True(t, ok)
	assert.Equal(t, 3, line.Quantity)

	state, err = svc.AdjustQuantity(ctx, 1, -5)
	require.NoError(t, err)
	_, ok = state.Find(1)
	assert.False(t, ok)
	require.NotNil(t, state.RestaurantID)

	state, err = svc.AdjustQuantity(ctx, 2, -1)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
	assert.Nil(t, state.RestaurantID)
}

func TestAdjustQuantityRejectsOverflow(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: newTestStore(t)}
	svc := newTestService(t, store)

	_, err := svc.AddItem(ctx, item(1, 7, "4"), 7)
	require.NoError(t, err)
	writes := store.writes

	state, err := svc.AdjustQuantity(ctx, 1, math.MaxInt)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidInput))
	line, ok := state.Find(1)
	require.True(t, ok, "line must survive a rejected adjustment")
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, writes, store.writes)

	state, err = svc.AdjustQuantity(ctx, 1, math.MaxInt-1)
	require.NoError(t, err)
	line, _ = state.Find(1)
	assert.Equal(t, math.MaxInt, line.Quantity)

	_, err = svc.AddItem(ctx, item(1, 7, "4"), 7)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidInput))
	assert.Equal(t, math.MaxInt, svc.State().Items[0].Quantity)

	state, err = svc.AdjustQuantity(ctx, 1, math.MinInt)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
}

func TestUnknownItemIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: newTestStore(t)}
	svc := newTestService(t, store)

	_, err := svc.RemoveItem(ctx, 99)
	require.NoError(t, err)
	_, err = svc.AdjustQuantity(ctx, 99, 1)
	require.NoError(t, err)
	assert.Zero(t, store.writes)
}

func TestRemoveLastItemClearsRestaurantAndStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := newTestService(t, store)

	_, err := svc.AddItem(ctx, item(1, 7, "4"), 7)
	require.NoError(t, err)
	_, err = store.Read(ctx, storage.KeyCart)
	require.NoError(t, err)

	state, err := svc.RemoveItem(ctx, 1)
	require.NoError(t, err)
	assert.True(t, state.IsEmpty())
	assert.Nil(t, state.RestaurantID)

	_, err = store.Read(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeductRemovesOnlyOrderedQuantities(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := newTestService(t, store)

	for _, id := range []int64{1, 1, 1, 2, 3} {
		_, err := svc.AddItem(ctx, item(id, 7, "2"), 7)
		require.NoError(t, err)
	}
	ordered := []LineItem{
		{ItemID: 1, Quantity: 2},
		{ItemID: 2, Quantity: 1},
		{ItemID: 9, Quantity: 4},
	}
	require.NoError(t, svc.Deduct(ctx, ordered))

	state := svc.State()
	require.Len(t, state.Items, 2)
	assert.Equal(t, int64(1), state.Items[0].ItemID)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, int64(3), state.Items[1].ItemID)
	require.NotNil(t, state.RestaurantID)

	require.NoError(t, svc.Deduct(ctx, state.Items))
	assert.True(t, svc.State().IsEmpty())
	assert.Nil(t, svc.State().RestaurantID)
	_, err := store.Read(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, svc.Deduct(ctx, ordered), "deducting from an empty cart is a no-op")
}

func TestWriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: newTestStore(t)}
	svc := newTestService(t, store)

	_, err := svc.AddItem(ctx, item(1, 7, "4"), 7)
	require.NoError(t, err)

	store.failWrites = true
	state, err := svc.AddItem(ctx, item(2, 7, "4"), 7)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
	assert.Len(t, state.Items, 1)
	assert.Len(t, svc.State().Items, 1)

	require.Error(t, svc.Clear(ctx))
	assert.Len(t, svc.State().Items, 1)
}

func TestRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	first := newTestService(t, store)

	_, err := first.AddItem(ctx, item(1, 7, "4.25"), 7)
	require.NoError(t, err)
	_, err = first.AddItem(ctx, item(1, 7, "4.25"), 7)
	require.NoError(t, err)
	_, err = first.AddItem(ctx, item(2, 7, "1.5"), 7)
	require.NoError(t, err)

	second := newTestService(t, store)
	state := second.Restore(ctx)

	assert.Equal(t, first.State(), state)
	assert.True(t, decimal.RequireFromString("10").Equal(second.Total()))
}

func TestRestoreFillsMissingRestaurantID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	raw := []byte(`{"items":[{"menuId":1,"menuName":"dish","price":"3","quantity":2,"restaurantId":7}]}`)
	require.NoError(t, store.Write(ctx, storage.KeyCart, raw))

	state := newTestService(t, store).Restore(ctx)
	require.NotNil(t, state.RestaurantID)
	assert.Equal(t, int64(7), *state.RestaurantID)
	assert.Equal(t, 2, state.Count())
}

func TestRestoreDiscardsCorruptSnapshots(t *testing.T) {
	cases := map[string]string{
		"not json":           `{"items":[`,
		"mixed restaurants":  `{"items":[{"menuId":1,"menuName":"a","price":"1","quantity":1,"restaurantId":7},{"menuId":2,"menuName":"b","price":"1","quantity":1,"restaurantId":8}],"restaurantId":7}`,
		"zero quantity":      `{"items":[{"menuId":1,"menuName":"a","price":"1","quantity":0,"restaurantId":7}],"restaurantId":7}`,
		"duplicate item":     `{"items":[{"menuId":1,"menuName":"a","price":"1","quantity":1,"restaurantId":7},{"menuId":1,"menuName":"a","price":"1","quantity":1,"restaurantId":7}],"restaurantId":7}`,
		"envelope mismatch":  `{"items":[{"menuId":1,"menuName":"a","price":"1","quantity":1,"restaurantId":7}],"restaurantId":9}`,
		"missing restaurant": `{"items":[{"menuId":1,"menuName":"a","price":"1","quantity":1}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t)
			require.NoError(t, store.Write(ctx, storage.KeyCart, []byte(raw)))

			state := newTestService(t, store).Restore(ctx)
			assert.True(t, state.IsEmpty())
			assert.Nil(t, state.RestaurantID)

			_, err := store.Read(ctx, storage.KeyCart)
			assert.ErrorIs(t, err, storage.ErrNotFound, "corrupt snapshot must be removed")
		})
	}
}

func TestRestoreEmptyStore(t *testing.T) {
	state := newTestService(t, newTestStore(t)).Restore(context.Background())
	assert.True(t, state.IsEmpty())
	assert.NotNil(t, state.Items)
}

// TestRandomSequencesKeepInvariants drives seeded random mutation sequences and
// checks the cart invariants after every step, plus a restore at the end.
func TestRandomSequencesKeepInvariants(t *testing.T) {
	prices := map[int64]string{1: "3.10", 2: "12", 3: "0.99", 4: "7.45", 5: "21.30", 6: "5"}
	restaurantOf := map[int64]int64{1: 7, 2: 7, 3: 7, 4: 8, 5: 8, 6: 9}

	for _, seed := range []int64{1, 7, 42, 2024, 99991} {
		seed := seed
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			ctx := context.Background()
			rng := rand.New(rand.NewSource(seed))
			store := newTestStore(t)
			svc := newTestService(t, store)

			for step := 0; step < 300; step++ {
				id := int64(rng.Intn(6) + 1)
				before := svc.State()

				var (
					state State
					err   error
				)
				switch rng.Intn(10) {
				case 0:
					err = svc.Clear(ctx)
					state = svc.State()
				case 1, 2:
					state, err = svc.RemoveItem(ctx, id)
				case 3, 4, 5:
					state, err = svc.AdjustQuantity(ctx, id, rng.Intn(7)-3)
				default:
					state, err = svc.AddItem(ctx, item(id, restaurantOf[id], prices[id]), restaurantOf[id])
					if err != nil {
						require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRestaurantMismatch), "step %d: %v", step, err)
						require.NotNil(t, before.RestaurantID)
						require.NotEqual(t, *before.RestaurantID, restaurantOf[id])
						require.Equal(t, before, state, "rejected add must not mutate")
					}
				}
				if err != nil && !pkgerrors.HasCode(err, pkgerrors.CodeRestaurantMismatch) {
					t.Fatalf("step %d: unexpected error %v", step, err)
				}
				assertCartInvariants(t, step, state)
				assertCartInvariants(t, step, svc.State())
			}

			restored := newTestService(t, store).Restore(ctx)
			current := svc.State()
			require.Len(t, restored.Items, len(current.Items))
			assert.True(t, current.Total().Equal(restored.Total()))
			assert.Equal(t, current.Count(), restored.Count())
		})
	}
}

func assertCartInvariants(t *testing.T, step int, state State) {
	t.Helper()

	want := decimal.Zero
	count := 0
	seen := map[int64]bool{}
	for _, line := range state.Items {
		require.GreaterOrEqual(t, line.Quantity, 1, "step %d: quantity floor", step)
		require.False(t, seen[line.ItemID], "step %d: duplicate line %d", step, line.ItemID)
		seen[line.ItemID] = true
		require.NotNil(t, state.RestaurantID, "step %d: non-empty cart without restaurant", step)
		require.Equal(t, *state.RestaurantID, line.RestaurantID, "step %d: mixed restaurants", step)
		want = want.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		count += line.Quantity
	}
	if len(state.Items) == 0 {
		require.Nil(t, state.RestaurantID, "step %d: empty cart keeps restaurant", step)
	}
	require.True(t, want.Equal(state.Total()), "step %d: total %s, want %s", step, state.Total(), want)
	require.Equal(t, count, state.Count(), "step %d", step)
}
