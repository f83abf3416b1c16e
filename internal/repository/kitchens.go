package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

var kitchenColumns = []string{"id", "user_id", "name", "location", "description", "is_default", "created_at", "updated_at"}

type KitchenRepository interface {
	// Create inserts k for k.UserID. The kitchen becomes the default when
	// makeDefault is set or it is the user's first kitchen; any other default
	// is cleared in the same transaction.
	Create(ctx context.Context, k entity.Kitchen, makeDefault bool) (*entity.Kitchen, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Kitchen, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Kitchen, error)
	Update(ctx context.Context, k entity.Kitchen) (*entity.Kitchen, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	SetDefault(ctx context.Context, id, userID uuid.UUID) error
	// RepairDefaults restores the single-default invariant for userID and
	// reports whether any row changed.
	RepairDefaults(ctx context.Context, userID uuid.UUID) (bool, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*entity.Kitchen, error)
	Stats(ctx context.Context, kitchenID uuid.UUID, today time.Time) (entity.KitchenStats, error)
}

type kitchenRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewKitchenRepository(db *DB, logger *slog.Logger) KitchenRepository {
	return &kitchenRepository{
		db:     db,
		logger: logger,
	}
}

func (r *kitchenRepository) Create(ctx context.Context, in entity.Kitchen, makeDefault bool) (*entity.Kitchen, error) {
	now := r.db.now()
	k := &entity.Kitchen{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.lockUser(ctx, tx, k.UserID); err != nil {
			return err
		}
		n, err := r.countForUser(ctx, tx, k.UserID)
		if err != nil {
			return err
		}
		k.IsDefault = makeDefault || n == 0
		if k.IsDefault {
			if err := r.clearDefaults(ctx, tx, k.UserID, now); err != nil {
				return err
			}
		}
		query, args := r.db.builder().Insert(tableKitchens).
			Columns(kitchenColumns...).
			Values(k.ID, k.UserID, k.Name, k.Location, k.Description, k.IsDefault, k.CreatedAt, k.UpdatedAt).
			Query()
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		r.logger.Error("failed to create kitchen", "user_id", in.UserID, "name", in.Name, "error", err)
		return nil, err
	}
	return k, nil
}

func (r *kitchenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Kitchen, error) {
	query, args := r.db.builder().Select(kitchenColumns...).
		From(r.db.table(tableKitchens)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("created_at", "id").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list kitchens", "user_id", userID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Kitchen
	for rows.Next() {
		k, err := scanKitchen(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *kitchenRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Kitchen, error) {
	return r.getForUser(ctx, r.db.SQL, id, userID)
}

func (r *kitchenRepository) getForUser(ctx context.Context, q querier, id, userID uuid.UUID) (*entity.Kitchen, error) {
	query, args := r.db.builder().Select(kitchenColumns...).
		From(r.db.table(tableKitchens)).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))).
		Query()
	k, err := scanKitchen(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "kitchen "+id.String())
	}
	return k, nil
}

func (r *kitchenRepository) Update(ctx context.Context, in entity.Kitchen) (*entity.Kitchen, error) {
	query, args := r.db.builder().Update(tableKitchens).
		Set("name", in.Name).
		Set("location", in.Location).
		Set("description", in.Description).
		Set("updated_at", r.db.now()).
		Where(entsql.And(entsql.EQ("id", in.ID), entsql.EQ("user_id", in.UserID))).
		Query()
	n, err := exec(ctx, r.db.SQL, query, args)
	if err != nil {
		r.logger.Error("failed to update kitchen", "kitchen_id", in.ID, "error", err)
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("kitchen %s: %w", in.ID, common.ErrNotFound)
	}
	return r.GetForUser(ctx, in.ID, in.UserID)
}

func (r *kitchenRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query, args := r.db.builder().Delete(tableKitchens).
		Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))).
		Query()
	n, err := exec(ctx, r.db.SQL, query, args)
	if err != nil {
		r.logger.Error("failed to delete kitchen", "kitchen_id", id, "error", err)
		return err
	}
	if n == 0 {
		return fmt.Errorf("kitchen %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *kitchenRepository) SetDefault(ctx context.Context, id, userID uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.lockUser(ctx, tx, userID); err != nil {
			return err
		}
		now := r.db.now()
		query, args := r.db.builder().Update(tableKitchens).
			Set("is_default", false).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("user_id", userID),
				entsql.NEQ("id", id),
				entsql.EQ("is_default", true),
			)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		query, args = r.db.builder().Update(tableKitchens).
			Set("is_default", true).
			Set("updated_at", now).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("user_id", userID))).
			Query()
		n, err := exec(ctx, tx, query, args)
		if err != nil {
			return err
		}
		if n != 1 {
			return fmt.Errorf("kitchen %s: %w", id, common.ErrNotFound)
		}
		return nil
	})
	if err != nil && !common.IsNotFound(err) {
		r.logger.Error("failed to set default kitchen", "kitchen_id", id, "user_id", userID, "error", err)
	}
	return err
}

func (r *kitchenRepository) RepairDefaults(ctx context.Context, userID uuid.UUID) (bool, error) {
	changed := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.lockUser(ctx, tx, userID); err != nil {
			return err
		}
		query, args := r.db.builder().Select("id", "is_default").
			From(r.db.table(tableKitchens)).
			Where(entsql.EQ("user_id", userID)).
			OrderBy("created_at", "id").
			Query()
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		var (
			ids      []uuid.UUID
			defaults []uuid.UUID
		)
		for rows.Next() {
			var (
				id uuid.UUID
				d  bool
			)
			if err := rows.Scan(&id, &d); err != nil {
				_ = rows.Close()
				return err
			}
			ids = append(ids, id)
			if d {
				defaults = append(defaults, id)
			}
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		var keep uuid.UUID
		switch {
		case len(ids) == 0 || len(defaults) == 1:
			return nil
		case len(defaults) > 1:
			keep = defaults[0]
		default:
			keep = ids[0]
		}

		now := r.db.now()
		query, args = r.db.builder().Update(tableKitchens).
			Set("is_default", false).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("user_id", userID),
				entsql.NEQ("id", keep),
				entsql.EQ("is_default", true),
			)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		query, args = r.db.builder().Update(tableKitchens).
			Set("is_default", true).
			Set("updated_at", now).
			Where(entsql.And(entsql.EQ("id", keep), entsql.EQ("is_default", false))).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		changed = true
		r.logger.Warn("kitchen.default.repaired",
			"user_id", userID,
			"kept", keep,
			"defaults_found", len(defaults),
			"kitchens", len(ids),
		)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to repair default kitchen", "user_id", userID, "error", err)
		return false, err
	}
	return changed, nil
}

func (r *kitchenRepository) GetDefault(ctx context.Context, userID uuid.UUID) (*entity.Kitchen, error) {
	query, args := r.db.builder().Select(kitchenColumns...).
		From(r.db.table(tableKitchens)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("is_default", true))).
		OrderBy("created_at", "id").
		Limit(1).
		Query()
	k, err := scanKitchen(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "default kitchen")
	}
	return k, nil
}

func (r *kitchenRepository) Stats(ctx context.Context, kitchenID uuid.UUID, today time.Time) (entity.KitchenStats, error) {
	var stats entity.KitchenStats
	expired := string(constants.StatusExpired)
	weekEnd := today.AddDate(0, 0, constants.ExpiringWindowDays)

	total := entsql.EQ("kitchen_id", kitchenID)
	expiring := entsql.And(
		entsql.EQ("kitchen_id", kitchenID),
		entsql.NotNull("expiry_date"),
		entsql.GTE("expiry_date", today),
		entsql.LTE("expiry_date", weekEnd),
		entsql.NEQ("status", expired),
	)
	expiredP := entsql.And(
		entsql.EQ("kitchen_id", kitchenID),
		entsql.Or(
			entsql.EQ("status", expired),
			entsql.And(entsql.NotNull("expiry_date"), entsql.LT("expiry_date", today)),
		),
	)

	for _, c := range []struct {
		where *entsql.Predicate
		dst   *int
	}{
		{total, &stats.TotalItems},
		{expiring, &stats.ExpiringCount},
		{expiredP, &stats.ExpiredCount},
	} {
		query, args := r.db.builder().Select(entsql.Count("*")).
			From(r.db.table(tableItems)).
			Where(c.where).
			Query()
		if err := r.db.SQL.QueryRowContext(ctx, query, args...).Scan(c.dst); err != nil {
			r.logger.Error("failed to compute kitchen stats", "kitchen_id", kitchenID, "error", err)
			return entity.KitchenStats{}, err
		}
	}
	return stats, nil
}

// lockUser serialises default-flag changes per user. SQLite transactions are
// already exclusive, so only Postgres takes a row lock.
func (r *kitchenRepository) lockUser(ctx context.Context, tx *sql.Tx, userID uuid.UUID) error {
	if !r.db.postgres() {
		return nil
	}
	query, args := r.db.builder().Select("id").
		From(r.db.table(tableUsers)).
		Where(entsql.EQ("id", userID)).
		ForUpdate().
		Query()
	var id uuid.UUID
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return notFound(err, "user "+userID.String())
	}
	return nil
}

func (r *kitchenRepository) countForUser(ctx context.Context, q querier, userID uuid.UUID) (int, error) {
	query, args := r.db.builder().Select(entsql.Count("*")).
		From(r.db.table(tableKitchens)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var n int
	err := q.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *kitchenRepository) clearDefaults(ctx context.Context, q querier, userID uuid.UUID, now time.Time) error {
	query, args := r.db.builder().Update(tableKitchens).
		Set("is_default", false).
		Set("updated_at", now).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("is_default", true))).
		Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

func scanKitchen(s scanner) (*entity.Kitchen, error) {
	var k entity.Kitchen
	if err := s.Scan(&k.ID, &k.UserID, &k.Name, &k.Location, &k.Description, &k.IsDefault, &k.CreatedAt, &k.UpdatedAt); err != nil {
		return nil, err
	}
	k.CreatedAt, k.UpdatedAt = k.CreatedAt.UTC(), k.UpdatedAt.UTC()
	return &k, nil
}
