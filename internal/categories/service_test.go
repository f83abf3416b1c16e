package categories

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

func newService(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.OpenInMemory(context.Background(), logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return NewService(logger, repository.NewCategoryRepository(db, logger))
}

func TestSeedThenList(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	n, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(constants.DefaultCategories()), n)

	_, err = s.Create(ctx, entity.Category{Name: "Baking", Color: "#c0ffee"})
	require.NoError(t, err)

	n, err = s.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cats, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(constants.DefaultCategories())+1)
	assert.Equal(t, "Baking", cats[0].Name)
}

func TestCreateRejects(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, entity.Category{Name: ""})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Create(ctx, entity.Category{Name: "Herbs", Color: "green"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Create(ctx, entity.Category{Name: "Herbs"})
	require.NoError(t, err)
	_, err = s.Create(ctx, entity.Category{Name: "Herbs"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, common.CodeValidation, common.CodeOf(err))
}
