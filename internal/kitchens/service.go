// Package kitchens manages kitchens and keeps at most one default per user.
package kitchens

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/expiry"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

type Input struct {
	Name        string
	Location    string
	Description string
	IsDefault   bool
}

// ExpiryItem is an item annotated with its distance to expiry.
// DaysUntilExpiry is nil for items without an expiry date.
type ExpiryItem struct {
	*entity.Item
	DaysUntilExpiry *int
}

// ExpiryGroup is one bucket of the expiry view.
type ExpiryGroup struct {
	Bucket expiry.Bucket
	Items  []ExpiryItem
}

type Service struct {
	logger   *slog.Logger
	kitchens repository.KitchenRepository
	items    repository.ItemRepository

	Now func() time.Time
}

func NewService(logger *slog.Logger, kitchens repository.KitchenRepository, items repository.ItemRepository) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, kitchens: kitchens, items: items}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in Input) (*entity.Kitchen, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	k, err := s.kitchens.Create(ctx, entity.Kitchen{
		UserID:      userID,
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
	}, in.IsDefault)
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to create kitchen")
	}
	s.logger.Info("kitchen.created", "kitchen_id", k.ID, "user_id", userID, "is_default", k.IsDefault)
	return k, nil
}

// List returns the user's kitchens oldest first, repairing the default flag beforehand.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*entity.Kitchen, error) {
	s.repair(ctx, userID)
	out, err := s.kitchens.ListByUser(ctx, userID)
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to list kitchens")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Kitchen, error) {
	k, err := s.kitchens.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, mapErr(err, "failed to load kitchen")
	}
	return k, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in Input) (*entity.Kitchen, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	k, err := s.kitchens.Update(ctx, entity.Kitchen{
		ID:          id,
		UserID:      userID,
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
	})
	if err != nil {
		return nil, mapErr(err, "failed to update kitchen")
	}
	return k, nil
}

// Delete removes the kitchen with its items and promotes another default if needed.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.kitchens.Delete(ctx, id, userID); err != nil {
		return mapErr(err, "failed to delete kitchen")
	}
	s.logger.Info("kitchen.deleted", "kitchen_id", id, "user_id", userID)
	s.repair(ctx, userID)
	return nil
}

func (s *Service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*entity.Kitchen, error) {
	if err := s.kitchens.SetDefault(ctx, id, userID); err != nil {
		return nil, mapErr(err, "failed to set default kitchen")
	}
	s.logger.Info("kitchen.default.set", "kitchen_id", id, "user_id", userID)
	return s.Get(ctx, userID, id)
}

// Default returns the user's default kitchen after repair. NotFound when the user has none.
func (s *Service) Default(ctx context.Context, userID uuid.UUID) (*entity.Kitchen, error) {
	s.repair(ctx, userID)
	k, err := s.kitchens.GetDefault(ctx, userID)
	if err != nil {
		return nil, mapErr(err, "failed to load default kitchen")
	}
	return k, nil
}

func (s *Service) Stats(ctx context.Context, userID, id uuid.UUID) (entity.KitchenStats, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return entity.KitchenStats{}, err
	}
	stats, err := s.kitchens.Stats(ctx, id, expiry.Today(s.now()))
	if err != nil {
		return entity.KitchenStats{}, common.InternalErrorf(err, "failed to compute kitchen stats")
	}
	return stats, nil
}

// Expiry groups the kitchen's items by expiry bucket, in display order.
// Items with zero quantity are counted as expired.
func (s *Service) Expiry(ctx context.Context, userID, id uuid.UUID) ([]ExpiryGroup, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	items, err := s.items.ListByKitchen(ctx, id, repository.ItemFilter{})
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to list items")
	}

	now := s.now()
	byBucket := make(map[expiry.Bucket][]ExpiryItem)
	for _, it := range items {
		ei := ExpiryItem{Item: it}
		if it.ExpiryDate != nil {
			d := expiry.DaysUntil(*it.ExpiryDate, now)
			ei.DaysUntilExpiry = &d
		}
		b := expiry.BucketFor(it.ExpiryDate, now)
		if it.Quantity == 0 {
			b = expiry.BucketExpired
		}
		byBucket[b] = append(byBucket[b], ei)
	}

	groups := make([]ExpiryGroup, 0, len(expiry.Buckets()))
	for _, b := range expiry.Buckets() {
		groups = append(groups, ExpiryGroup{Bucket: b, Items: byBucket[b]})
	}
	return groups, nil
}

// RefreshStatus re-derives stored statuses for in-stock items and returns how many changed.
func (s *Service) RefreshStatus(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return 0, err
	}
	n, err := s.items.RefreshStatuses(ctx, id, expiry.Today(s.now()))
	if err != nil {
		return 0, common.InternalErrorf(err, "failed to refresh item status")
	}
	s.logger.Info("kitchen.status.refreshed", "kitchen_id", id, "updated", n)
	return n, nil
}

// repair is opportunistic; a failure is logged and the caller carries on.
func (s *Service) repair(ctx context.Context, userID uuid.UUID) {
	if _, err := s.kitchens.RepairDefaults(ctx, userID); err != nil {
		s.logger.Warn("kitchen.default.repair_failed", "user_id", userID, "error", err)
	}
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func validate(in Input) error {
	v := common.NewValidator().
		Field("name", in.Name, common.Required, common.MaxLength(constants.MaxKitchenName)).
		Field("location", in.Location, common.MaxLength(constants.MaxLocationLen))
	return common.ValidateAndReturnError(v)
}

func mapErr(err error, msg string) error {
	if common.IsNotFound(err) {
		return common.NotFoundErrorf("kitchen not found")
	}
	return common.InternalErrorf(err, "%s", msg)
}
