package preferences

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

// Where a resolved kitchen came from.
const (
	SourcePreference = "preference"
	SourceDefault    = "default"
	SourceNone       = "none"
)

// KitchenLookup is the subset of the kitchen service used for resolution.
type KitchenLookup interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*entity.Kitchen, error)
	Default(ctx context.Context, userID uuid.UUID) (*entity.Kitchen, error)
}

type CurrentKitchen struct {
	Kitchen *entity.Kitchen
	Source  string
}

type KitchenPreference struct {
	store    *Store
	kitchens KitchenLookup
	logger   *slog.Logger
}

func NewKitchenPreference(store *Store, kitchens KitchenLookup, logger *slog.Logger) *KitchenPreference {
	if logger == nil {
		logger = slog.Default()
	}
	return &KitchenPreference{store: store, kitchens: kitchens, logger: logger}
}

// Select stores kitchenID after checking that userID owns it.
func (p *KitchenPreference) Select(ctx context.Context, userID, kitchenID uuid.UUID) (*entity.Kitchen, error) {
	k, err := p.kitchens.Get(ctx, userID, kitchenID)
	if err != nil {
		return nil, err
	}
	if err := p.store.SetLastKitchen(userID, kitchenID); err != nil {
		return nil, common.InternalErrorf(err, "failed to save kitchen preference")
	}
	return k, nil
}

// Current resolves the stored kitchen, then the default kitchen, then none.
// A stale preference is cleared.
func (p *KitchenPreference) Current(ctx context.Context, userID uuid.UUID) (CurrentKitchen, error) {
	id, ok, err := p.store.LastKitchen(userID)
	if err != nil {
		p.logger.Warn("preferences.kitchen.read_failed", "user_id", userID, "error", err)
	}
	if ok {
		k, err := p.kitchens.Get(ctx, userID, id)
		switch {
		case err == nil:
			return CurrentKitchen{Kitchen: k, Source: SourcePreference}, nil
		case common.IsNotFound(err):
			if cerr := p.store.ClearLastKitchen(userID); cerr != nil {
				p.logger.Warn("preferences.kitchen.clear_failed", "user_id", userID, "error", cerr)
			}
		default:
			return CurrentKitchen{}, err
		}
	}

	k, err := p.kitchens.Default(ctx, userID)
	if err != nil {
		if common.IsNotFound(err) {
			return CurrentKitchen{Source: SourceNone}, nil
		}
		return CurrentKitchen{}, err
	}
	return CurrentKitchen{Kitchen: k, Source: SourceDefault}, nil
}
