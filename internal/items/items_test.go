package items

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

var jan10 = time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)

type fixture struct {
	db        *repository.DB
	service   *Service
	committer *Committer
	items     repository.ItemRepository
	cats      repository.CategoryRepository
	userID    uuid.UUID
	kitchenID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.OpenInMemory(ctx, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	var (
		mu    sync.Mutex
		clock = jan10
	)
	db.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Millisecond)
		return clock
	}

	user, err := repository.NewUserRepository(db, logger).GetOrCreate(ctx, entity.User{ExternalID: "sub"})
	require.NoError(t, err)
	kitchens := repository.NewKitchenRepository(db, logger)
	k, err := kitchens.Create(ctx, entity.Kitchen{UserID: user.ID, Name: "Home"}, false)
	require.NoError(t, err)
	cats := repository.NewCategoryRepository(db, logger)
	_, err = cats.SeedDefaults(ctx)
	require.NoError(t, err)

	items := repository.NewItemRepository(db, logger)
	svc := NewService(logger, items, kitchens)
	svc.Now = func() time.Time { return jan10 }
	com := NewCommitter(logger, CommitConfig{Workers: 3}, cats, items, kitchens)
	com.Now = func() time.Time { return jan10 }

	return &fixture{db: db, service: svc, committer: com, items: items, cats: cats, userID: user.ID, kitchenID: k.ID}
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func strp(s string) *string { return &s }

func TestCreateDerivesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		expiry *time.Time
		qty    int
		want   string
	}{
		{"no expiry", nil, 1, "Fresh"},
		{"today", day(2024, 1, 10), 1, "Expiring"},
		{"seven days", day(2024, 1, 17), 1, "Expiring"},
		{"eight days", day(2024, 1, 18), 1, "Fresh"},
		{"past", day(2024, 1, 5), 1, "Expired"},
		{"empty", day(2024, 2, 1), 0, "Expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it, err := f.service.Create(ctx, f.userID, CreateInput{
				KitchenID: f.kitchenID,
				Fields:    Fields{Name: tc.name, Quantity: tc.qty, ExpiryDate: tc.expiry},
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, it.Status)
			assert.Equal(t, "pcs", it.Unit)
			assert.Equal(t, "Pantry", it.Location)
		})
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.userID, CreateInput{KitchenID: f.kitchenID, Fields: Fields{Name: "  "}})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.service.Create(ctx, f.userID, CreateInput{Fields: Fields{Name: "Rice"}})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.service.Create(ctx, f.userID, CreateInput{KitchenID: f.kitchenID, Fields: Fields{Name: "Rice", Quantity: -1}})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.service.Create(ctx, uuid.New(), CreateInput{KitchenID: f.kitchenID, Fields: Fields{Name: "Rice"}})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateIntents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	it, err := f.service.Create(ctx, f.userID, CreateInput{
		KitchenID: f.kitchenID,
		Fields:    Fields{Name: "Eggs", Quantity: 12, ExpiryDate: day(2024, 2, 1)},
	})
	require.NoError(t, err)

	it, err = f.service.UpdateQuantity(ctx, f.userID, it.ID, 6)
	require.NoError(t, err)
	assert.Equal(t, 6, it.Quantity)
	assert.Equal(t, "Fresh", it.Status)

	it, err = f.service.UpdateQuantity(ctx, f.userID, it.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, it.Quantity)

	_, err = f.service.UpdateQuantity(ctx, f.userID, it.ID, -2)
	assert.ErrorIs(t, err, common.ErrValidation)

	it, err = f.service.UpdateItem(ctx, f.userID, it.ID, Fields{Name: "Brown eggs", Quantity: 8, Unit: "pcs", Location: "Fridge", ExpiryDate: day(2024, 1, 12)})
	require.NoError(t, err)
	assert.Equal(t, "Brown eggs", it.Name)
	assert.Equal(t, "Fridge", it.Location)
	assert.Equal(t, "Expiring", it.Status)

	it, err = f.service.MarkConsumed(ctx, f.userID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, it.Quantity)
	assert.Equal(t, "Expired", it.Status)

	history, err := f.service.History(ctx, f.userID, it.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(history))
	for _, h := range history {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{"Consumed", "Updated", "Updated", "Consumed", "Added"}, actions)
	assert.Equal(t, 8, history[0].PreviousQuantity)
	assert.Equal(t, 0, history[0].Quantity)

	_, err = f.service.UpdateQuantity(ctx, uuid.New(), it.ID, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	it, err := f.service.Create(ctx, f.userID, CreateInput{KitchenID: f.kitchenID, Fields: Fields{Name: "Bread", Quantity: 1}})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Delete(ctx, uuid.New(), it.ID), common.ErrNotFound)
	require.NoError(t, f.service.Delete(ctx, f.userID, it.ID))
	_, err = f.service.Get(ctx, f.userID, it.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"Basmati Rice", "Brown Rice", "Oats"} {
		_, err := f.service.Create(ctx, f.userID, CreateInput{KitchenID: f.kitchenID, Fields: Fields{Name: n, Quantity: 1}})
		require.NoError(t, err)
	}

	got, err := f.service.List(ctx, f.userID, f.kitchenID, repository.ItemFilter{Search: "rice"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = f.service.List(ctx, f.userID, f.kitchenID, repository.ItemFilter{Status: "Rotten"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

type failingResolver struct {
	next CategoryResolver
	fail string
}

func (r failingResolver) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	if name == r.fail {
		return nil, errors.New("category lookup timed out")
	}
	return r.next.FindByName(ctx, name)
}

func TestCommitAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	price := decimal.NewFromInt(30)

	n, err := f.committer.Commit(ctx, f.userID, f.kitchenID, []entity.CommitRow{
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Tomatoes", Quantity: 1, Unit: "kg", Category: strp("Vegetables"), Price: &price}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Mystery", Quantity: 2, Category: strp("Unknown Aisle"), Notes: strp("from the market")}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Salt", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := f.items.ListByKitchen(ctx, f.kitchenID, repository.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	byName := map[string]*entity.Item{}
	for _, it := range items {
		byName[it.Name] = it
	}

	tom := byName["Tomatoes"]
	require.NotNil(t, tom)
	assert.Equal(t, "Vegetables", tom.CategoryName)
	assert.Equal(t, "Bought for ₹30", tom.Notes)
	assert.Equal(t, "Pantry", tom.Location)
	assert.Equal(t, "Fresh", tom.Status)
	require.NotNil(t, tom.PurchaseDate)
	assert.True(t, tom.PurchaseDate.Equal(*day(2024, 1, 10)))

	mys := byName["Mystery"]
	require.NotNil(t, mys)
	assert.Nil(t, mys.CategoryID)
	assert.Equal(t, "from the market", mys.Notes)
	assert.Equal(t, "pcs", mys.Unit)

	assert.Equal(t, "Added from invoice", byName["Salt"].Notes)
}

func TestCommitZeroQuantityIsExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.committer.Commit(ctx, f.userID, f.kitchenID, []entity.CommitRow{
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Bread", Quantity: 0, Status: "Fresh"}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Jam", Quantity: 1, Status: "Expiring"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := f.items.ListByKitchen(ctx, f.kitchenID, repository.ItemFilter{})
	require.NoError(t, err)
	status := map[string]string{}
	for _, it := range items {
		status[it.Name] = it.Status
	}
	assert.Equal(t, map[string]string{"Bread": "Expired", "Jam": "Expiring"}, status)
}

func TestCommitPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.committer.Categories = failingResolver{next: f.cats, fail: "Dairy"}

	rows := []entity.CommitRow{
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Rice", Quantity: 1, Category: strp("Grains & Pasta")}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Milk", Quantity: 1, Category: strp("Dairy")}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Apples", Quantity: 4, Category: strp("Fruits")}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "", Quantity: 1}},
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Tea", Quantity: 1}},
	}
	n, err := f.committer.Commit(ctx, f.userID, f.kitchenID, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := f.items.ListByKitchen(ctx, f.kitchenID, repository.ItemFilter{})
	require.NoError(t, err)
	names := map[string]bool{}
	for _, it := range items {
		names[it.Name] = true
	}
	assert.Equal(t, map[string]bool{"Rice": true, "Apples": true, "Tea": true}, names)
}

func TestCommitZeroSelected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.committer.Commit(ctx, f.userID, f.kitchenID, []entity.CommitRow{
		{Selected: false, CandidateItem: entity.CandidateItem{Name: "Rice", Quantity: 1}},
	})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, n)

	_, err = f.committer.Commit(ctx, f.userID, f.kitchenID, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	items, err := f.items.ListByKitchen(ctx, f.kitchenID, repository.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCommitForeignKitchen(t *testing.T) {
	f := newFixture(t)
	_, err := f.committer.Commit(context.Background(), uuid.New(), f.kitchenID, []entity.CommitRow{
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Rice", Quantity: 1}},
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInvoiceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows := []entity.CommitRow{
		{Selected: true, CandidateItem: entity.CandidateItem{Name: "Tomatoes", Quantity: 1, Unit: "kg", Location: "Pantry", Status: "Fresh"}},
		{Selected: false, CandidateItem: entity.CandidateItem{Name: "Milk", Quantity: 1, Unit: "l", Location: "Fridge", Status: "Fresh"}},
	}
	n, err := f.committer.Commit(ctx, f.userID, f.kitchenID, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := f.items.ListByKitchen(ctx, f.kitchenID, repository.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Tomatoes", items[0].Name)

	history, err := f.items.History(ctx, items[0].ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Added", history[0].Action)

	var logs int
	require.NoError(t, f.db.SQL.QueryRowContext(ctx, "SELECT COUNT(*) FROM item_logs").Scan(&logs))
	assert.Equal(t, 1, logs)
}
