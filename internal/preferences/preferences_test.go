package preferences

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

func newStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fakeKitchens struct {
	owned map[uuid.UUID]*entity.Kitchen
	def   *entity.Kitchen
}

func (f *fakeKitchens) Get(_ context.Context, _ uuid.UUID, id uuid.UUID) (*entity.Kitchen, error) {
	if k, ok := f.owned[id]; ok {
		return k, nil
	}
	return nil, common.NotFoundErrorf("kitchen not found")
}

func (f *fakeKitchens) Default(context.Context, uuid.UUID) (*entity.Kitchen, error) {
	if f.def == nil {
		return nil, common.NotFoundErrorf("kitchen not found")
	}
	return f.def, nil
}

func TestStoreRoundTrip(t *testing.T) {
	s := newStore(t, "")
	user, kitchen := uuid.New(), uuid.New()

	_, ok, err := s.LastKitchen(user)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetLastKitchen(user, kitchen))
	got, ok, err := s.LastKitchen(user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, kitchen, got)

	_, ok, err = s.LastKitchen(uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ClearLastKitchen(user))
	_, ok, err = s.LastKitchen(user)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	user, kitchen := uuid.New(), uuid.New()

	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetLastKitchen(user, kitchen))
	require.NoError(t, s.Close())

	reopened := newStore(t, dir)
	got, ok, err := reopened.LastKitchen(user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, kitchen, got)
}

func TestCurrentKitchenResolution(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()
	home := &entity.Kitchen{ID: uuid.New(), Name: "Home", IsDefault: true}
	office := &entity.Kitchen{ID: uuid.New(), Name: "Office"}
	kitchens := &fakeKitchens{owned: map[uuid.UUID]*entity.Kitchen{home.ID: home, office.ID: office}, def: home}
	p := NewKitchenPreference(newStore(t, ""), kitchens, nil)

	cur, err := p.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, cur.Source)
	assert.Equal(t, home.ID, cur.Kitchen.ID)

	_, err = p.Select(ctx, user, office.ID)
	require.NoError(t, err)
	cur, err = p.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, SourcePreference, cur.Source)
	assert.Equal(t, office.ID, cur.Kitchen.ID)

	_, err = p.Select(ctx, user, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	delete(kitchens.owned, office.ID)
	cur, err = p.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, cur.Source)

	kitchens.def = nil
	cur, err = p.Current(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, SourceNone, cur.Source)
	assert.Nil(t, cur.Kitchen)
}
