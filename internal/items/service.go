// Package items implements inventory item mutations and the invoice commit engine.
package items

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

// Fields are the user-editable attributes of an item.
type Fields struct {
	Name         string
	Brand        string
	Quantity     int
	Unit         string
	CategoryID   *uuid.UUID
	Location     string
	PurchaseDate *time.Time
	ExpiryDate   *time.Time
	Notes        string
	Barcode      string
}

type CreateInput struct {
	KitchenID uuid.UUID
	Fields
}

type Service struct {
	logger   *slog.Logger
	items    repository.ItemRepository
	kitchens repository.KitchenRepository

	// Now drives status derivation. Nil means time.Now.
	Now func() time.Time
}

func NewService(logger *slog.Logger, items repository.ItemRepository, kitchens repository.KitchenRepository) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, items: items, kitchens: kitchens}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*entity.Item, error) {
	v := common.NewValidator().Field("kitchenId", in.KitchenID, common.Required)
	f := normalizeFields(in.Fields)
	validateFields(v, f)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	if err := s.ownKitchen(ctx, userID, in.KitchenID); err != nil {
		return nil, err
	}

	item := applyFields(entity.Item{KitchenID: in.KitchenID}, f)
	item.Status = string(expiry.StatusForQuantity(item.Quantity, item.ExpiryDate, s.now()))

	created, err := s.items.CreateWithLog(ctx, item, &userID)
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to create item")
	}
	s.logger.Info("item.created", "item_id", created.ID, "kitchen_id", created.KitchenID, "status", created.Status)
	return created, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Item, error) {
	item, err := s.items.GetForUser(ctx, id, userID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.NotFoundErrorf("item not found")
		}
		return nil, common.InternalErrorf(err, "failed to load item")
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, userID, kitchenID uuid.UUID, f repository.ItemFilter) ([]*entity.Item, error) {
	if f.Status != "" && !constants.ValidStatus(f.Status) {
		return nil, common.ValidationErrorf("status must be one of Fresh, Expiring, Expired")
	}
	if err := s.ownKitchen(ctx, userID, kitchenID); err != nil {
		return nil, err
	}
	out, err := s.items.ListByKitchen(ctx, kitchenID, f)
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to list items")
	}
	return out, nil
}

// UpdateQuantity sets the quantity. A decrease is logged as Consumed; zero forces Expired.
func (s *Service) UpdateQuantity(ctx context.Context, userID, id uuid.UUID, quantity int) (*entity.Item, error) {
	if err := common.ValidateAndReturnError(common.NewValidator().Field("quantity", quantity, common.NonNegative)); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	action := constants.ActionUpdated
	if quantity < cur.Quantity {
		action = constants.ActionConsumed
	}
	next := *cur
	next.Quantity = quantity
	next.Status = string(expiry.StatusForQuantity(quantity, cur.ExpiryDate, s.now()))
	return s.write(ctx, userID, cur, next, action)
}

func (s *Service) MarkConsumed(ctx context.Context, userID, id uuid.UUID) (*entity.Item, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next := *cur
	next.Quantity = 0
	next.Status = string(constants.StatusExpired)
	return s.write(ctx, userID, cur, next, constants.ActionConsumed)
}

// UpdateItem replaces every editable field and re-derives status.
func (s *Service) UpdateItem(ctx context.Context, userID, id uuid.UUID, in Fields) (*entity.Item, error) {
	f := normalizeFields(in)
	v := common.NewValidator()
	validateFields(v, f)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next := applyFields(*cur, f)
	next.Status = string(expiry.StatusForQuantity(next.Quantity, next.ExpiryDate, s.now()))
	return s.write(ctx, userID, cur, next, constants.ActionUpdated)
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, *cur, &userID); err != nil {
		if common.IsNotFound(err) {
			return common.NotFoundErrorf("item not found")
		}
		return common.InternalErrorf(err, "failed to delete item")
	}
	s.logger.Info("item.removed",
		"item_id", cur.ID,
		"kitchen_id", cur.KitchenID,
		"user_id", userID,
		"previous_quantity", cur.Quantity,
	)
	return nil
}

func (s *Service) History(ctx context.Context, userID, id uuid.UUID) ([]*entity.ItemLog, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	logs, err := s.items.History(ctx, id)
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to load item history")
	}
	return logs, nil
}

func (s *Service) write(ctx context.Context, userID uuid.UUID, cur *entity.Item, next entity.Item, action constants.LogAction) (*entity.Item, error) {
	updated, err := s.items.Update(ctx, next, entity.ItemLog{
		Action:           string(action),
		Quantity:         next.Quantity,
		PreviousQuantity: cur.Quantity,
		UserID:           &userID,
	})
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.NotFoundErrorf("item not found")
		}
		return nil, common.InternalErrorf(err, "failed to update item")
	}
	s.logger.Info("item.updated", "item_id", updated.ID, "action", action, "quantity", updated.Quantity, "status", updated.Status)
	return s.Get(ctx, userID, updated.ID)
}

func (s *Service) ownKitchen(ctx context.Context, userID, kitchenID uuid.UUID) error {
	if _, err := s.kitchens.GetForUser(ctx, kitchenID, userID); err != nil {
		if common.IsNotFound(err) {
			return common.NotFoundErrorf("kitchen not found")
		}
		return common.InternalErrorf(err, "failed to load kitchen")
	}
	return nil
}

func normalizeFields(f Fields) Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.Brand = strings.TrimSpace(f.Brand)
	f.Unit = strings.TrimSpace(f.Unit)
	f.Location = strings.TrimSpace(f.Location)
	f.Notes = strings.TrimSpace(f.Notes)
	f.Barcode = strings.TrimSpace(f.Barcode)
	if f.Unit == "" {
		f.Unit = constants.DefaultUnit
	}
	if f.Location == "" {
		f.Location = constants.DefaultLocation
	}
	if f.PurchaseDate != nil {
		d := expiry.DateOf(*f.PurchaseDate)
		f.PurchaseDate = &d
	}
	if f.ExpiryDate != nil {
		d := expiry.DateOf(*f.ExpiryDate)
		f.ExpiryDate = &d
	}
	return f
}

func validateFields(v *common.Validator, f Fields) {
	v.Field("name", f.Name, common.Required, common.MaxLength(constants.MaxNameLen)).
		Field("brand", f.Brand, common.MaxLength(constants.MaxBrandLen)).
		Field("quantity", f.Quantity, common.NonNegative).
		Field("unit", f.Unit, common.MaxLength(constants.MaxUnitLen)).
		Field("location", f.Location, common.MaxLength(constants.MaxLocationLen)).
		Field("barcode", f.Barcode, common.MaxLength(constants.MaxBarcodeLen))
}

func applyFields(item entity.Item, f Fields) entity.Item {
	item.Name = f.Name
	item.Brand = f.Brand
	item.Quantity = f.Quantity
	item.Unit = f.Unit
	item.CategoryID = f.CategoryID
	item.Location = f.Location
	item.PurchaseDate = f.PurchaseDate
	item.ExpiryDate = f.ExpiryDate
	item.Notes = f.Notes
	item.Barcode = f.Barcode
	return item
}
