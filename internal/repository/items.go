package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

var itemColumns = []string{
	"id", "kitchen_id", "name", "brand", "quantity", "unit", "category_id", "location",
	"purchase_date", "expiry_date", "notes", "barcode", "status", "created_at", "updated_at",
}

var itemLogColumns = []string{"id", "item_id", "action", "quantity", "previous_quantity", "user_id", "created_at"}

// ItemFilter narrows ListByKitchen. Zero values match everything.
type ItemFilter struct {
	Status string
	Search string
}

type ItemRepository interface {
	// CreateWithLog inserts item and its Added log in one transaction.
	CreateWithLog(ctx context.Context, item entity.Item, actor *uuid.UUID) (*entity.Item, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Item, error)
	ListByKitchen(ctx context.Context, kitchenID uuid.UUID, f ItemFilter) ([]*entity.Item, error)
	// Update writes every editable field of item and appends entry.
	Update(ctx context.Context, item entity.Item, entry entity.ItemLog) (*entity.Item, error)
	// Delete appends a Removed log and deletes the item in one transaction.
	Delete(ctx context.Context, item entity.Item, actor *uuid.UUID) error
	History(ctx context.Context, itemID uuid.UUID) ([]*entity.ItemLog, error)
	// RefreshStatuses re-derives status from expiry_date for in-stock items.
	RefreshStatuses(ctx context.Context, kitchenID uuid.UUID, today time.Time) (int64, error)
}

type itemRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewItemRepository(db *DB, logger *slog.Logger) ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *itemRepository) CreateWithLog(ctx context.Context, in entity.Item, actor *uuid.UUID) (*entity.Item, error) {
	now := r.db.now()
	item := in
	item.ID = uuid.New()
	item.CreatedAt, item.UpdatedAt = now, now

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query, args := r.db.builder().Insert(tableItems).
			Columns(itemColumns...).
			Values(item.ID, item.KitchenID, item.Name, item.Brand, item.Quantity, item.Unit,
				nullUUID(item.CategoryID), item.Location, nullTime(item.PurchaseDate), nullTime(item.ExpiryDate),
				item.Notes, item.Barcode, item.Status, item.CreatedAt, item.UpdatedAt).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		return r.appendLog(ctx, tx, entity.ItemLog{
			ItemID:   item.ID,
			Action:   string(constants.ActionAdded),
			Quantity: item.Quantity,
			UserID:   actor,
		})
	})
	if err != nil {
		r.logger.Error("failed to create item", "kitchen_id", in.KitchenID, "name", in.Name, "error", err)
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Item, error) {
	b := r.db.builder()
	t, k, c := itemTables(b)
	query, args := b.Select(joinedItemColumns(t, c)...).
		From(t).
		Join(k).On(t.C("kitchen_id"), k.C("id")).
		LeftJoin(c).On(t.C("category_id"), c.C("id")).
		Where(entsql.And(entsql.EQ(t.C("id"), id), entsql.EQ(k.C("user_id"), userID))).
		Query()
	item, err := scanItem(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "item "+id.String())
	}
	return item, nil
}

func (r *itemRepository) ListByKitchen(ctx context.Context, kitchenID uuid.UUID, f ItemFilter) ([]*entity.Item, error) {
	b := r.db.builder()
	t, _, c := itemTables(b)

	preds := []*entsql.Predicate{entsql.EQ(t.C("kitchen_id"), kitchenID)}
	if f.Status != "" {
		preds = append(preds, entsql.EQ(t.C("status"), f.Status))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold(t.C("name"), q),
			entsql.ContainsFold(t.C("brand"), q),
		))
	}

	query, args := b.Select(joinedItemColumns(t, c)...).
		From(t).
		LeftJoin(c).On(t.C("category_id"), c.C("id")).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc(t.C("created_at")), t.C("id")).
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list items", "kitchen_id", kitchenID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *itemRepository) Update(ctx context.Context, in entity.Item, entry entity.ItemLog) (*entity.Item, error) {
	item := in
	item.UpdatedAt = r.db.now()

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query, args := r.db.builder().Update(tableItems).
			Set("name", item.Name).
			Set("brand", item.Brand).
			Set("quantity", item.Quantity).
			Set("unit", item.Unit).
			Set("category_id", nullUUID(item.CategoryID)).
			Set("location", item.Location).
			Set("purchase_date", nullTime(item.PurchaseDate)).
			Set("expiry_date", nullTime(item.ExpiryDate)).
			Set("notes", item.Notes).
			Set("barcode", item.Barcode).
			Set("status", item.Status).
			Set("updated_at", item.UpdatedAt).
			Where(entsql.And(entsql.EQ("id", item.ID), entsql.EQ("kitchen_id", item.KitchenID))).
			Query()
		n, err := exec(ctx, tx, query, args)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("item %s: %w", item.ID, common.ErrNotFound)
		}
		entry.ItemID = item.ID
		return r.appendLog(ctx, tx, entry)
	})
	if err != nil {
		if !common.IsNotFound(err) {
			r.logger.Error("failed to update item", "item_id", in.ID, "error", err)
		}
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) Delete(ctx context.Context, item entity.Item, actor *uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.lockItem(ctx, tx, item); err != nil {
			return err
		}
		if err := r.appendLog(ctx, tx, entity.ItemLog{
			ItemID:           item.ID,
			Action:           string(constants.ActionRemoved),
			Quantity:         0,
			PreviousQuantity: item.Quantity,
			UserID:           actor,
		}); err != nil {
			return err
		}
		query, args := r.db.builder().Delete(tableItems).
			Where(entsql.And(entsql.EQ("id", item.ID), entsql.EQ("kitchen_id", item.KitchenID))).
			Query()
		n, err := exec(ctx, tx, query, args)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("item %s: %w", item.ID, common.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		if !common.IsNotFound(err) {
			r.logger.Error("failed to delete item", "item_id", item.ID, "error", err)
		}
		return err
	}
	return nil
}

func (r *itemRepository) History(ctx context.Context, itemID uuid.UUID) ([]*entity.ItemLog, error) {
	query, args := r.db.builder().Select(itemLogColumns...).
		From(r.db.table(tableItemLogs)).
		Where(entsql.EQ("item_id", itemID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to load item history", "item_id", itemID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ItemLog
	for rows.Next() {
		var (
			l     entity.ItemLog
			actor uuid.NullUUID
		)
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Action, &l.Quantity, &l.PreviousQuantity, &actor, &l.CreatedAt); err != nil {
			return nil, err
		}
		if actor.Valid {
			l.UserID = &actor.UUID
		}
		l.CreatedAt = l.CreatedAt.UTC()
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *itemRepository) RefreshStatuses(ctx context.Context, kitchenID uuid.UUID, today time.Time) (int64, error) {
	weekEnd := today.AddDate(0, 0, constants.ExpiringWindowDays)

	updates := []struct {
		status constants.ItemStatus
		when   *entsql.Predicate
	}{
		{constants.StatusExpired, entsql.And(entsql.NotNull("expiry_date"), entsql.LT("expiry_date", today))},
		{constants.StatusExpiring, entsql.And(
			entsql.NotNull("expiry_date"),
			entsql.GTE("expiry_date", today),
			entsql.LTE("expiry_date", weekEnd),
		)},
		{constants.StatusFresh, entsql.Or(entsql.IsNull("expiry_date"), entsql.GT("expiry_date", weekEnd))},
	}

	var total int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		now := r.db.now()
		for _, u := range updates {
			query, args := r.db.builder().Update(tableItems).
				Set("status", string(u.status)).
				Set("updated_at", now).
				Where(entsql.And(
					entsql.EQ("kitchen_id", kitchenID),
					entsql.GT("quantity", 0),
					u.when,
					entsql.NEQ("status", string(u.status)),
				)).
				Query()
			n, err := exec(ctx, tx, query, args)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to refresh item statuses", "kitchen_id", kitchenID, "error", err)
		return 0, err
	}
	return total, nil
}

// lockItem fails with ErrNotFound when the item is already gone, so the
// Removed log is never written for a missing row.
func (r *itemRepository) lockItem(ctx context.Context, tx *sql.Tx, item entity.Item) error {
	sel := r.db.builder().Select("id").
		From(r.db.table(tableItems)).
		Where(entsql.And(entsql.EQ("id", item.ID), entsql.EQ("kitchen_id", item.KitchenID)))
	if r.db.postgres() {
		sel = sel.ForUpdate()
	}
	query, args := sel.Query()
	var id uuid.UUID
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return notFound(err, "item "+item.ID.String())
	}
	return nil
}

func (r *itemRepository) appendLog(ctx context.Context, q querier, l entity.ItemLog) error {
	query, args := r.db.builder().Insert(tableItemLogs).
		Columns(itemLogColumns...).
		Values(uuid.New(), l.ItemID, l.Action, l.Quantity, l.PreviousQuantity, nullUUID(l.UserID), r.db.now()).
		Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// itemTables returns aliased tables; Join renames unaliased ones.
func itemTables(b *entsql.DialectBuilder) (items, kitchens, categories *entsql.SelectTable) {
	return b.Table(tableItems).As("i"), b.Table(tableKitchens).As("k"), b.Table(tableCategories).As("c")
}

func joinedItemColumns(t, c *entsql.SelectTable) []string {
	cols := make([]string, 0, len(itemColumns)+2)
	for _, col := range itemColumns {
		cols = append(cols, t.C(col))
	}
	return append(cols, c.C("name"), c.C("color"))
}

func scanItem(s scanner) (*entity.Item, error) {
	var (
		it            entity.Item
		category      uuid.NullUUID
		purchase      sql.NullTime
		expiry        sql.NullTime
		categoryName  sql.NullString
		categoryColor sql.NullString
	)
	if err := s.Scan(&it.ID, &it.KitchenID, &it.Name, &it.Brand, &it.Quantity, &it.Unit, &category, &it.Location,
		&purchase, &expiry, &it.Notes, &it.Barcode, &it.Status, &it.CreatedAt, &it.UpdatedAt,
		&categoryName, &categoryColor); err != nil {
		return nil, err
	}
	if category.Valid {
		it.CategoryID = &category.UUID
	}
	it.PurchaseDate = timePtr(purchase)
	it.ExpiryDate = timePtr(expiry)
	it.CategoryName = categoryName.String
	it.CategoryColor = categoryColor.String
	it.CreatedAt, it.UpdatedAt = it.CreatedAt.UTC(), it.UpdatedAt.UTC()
	return &it, nil
}

func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
