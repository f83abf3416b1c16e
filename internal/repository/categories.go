package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

var categoryColumns = []string{"id", "name", "description", "icon", "color", "created_at"}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	// FindByName matches name exactly. A miss returns common.ErrNotFound.
	FindByName(ctx context.Context, name string) (*entity.Category, error)
	Create(ctx context.Context, c entity.Category) (*entity.Category, error)
	// SeedDefaults inserts the default categories whose names are absent and
	// returns how many were inserted.
	SeedDefaults(ctx context.Context) (int, error)
}

type categoryRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewCategoryRepository(db *DB, logger *slog.Logger) CategoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	query, args := r.db.builder().Select(categoryColumns...).
		From(r.db.table(tableCategories)).
		OrderBy("name").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list categories", "error", err)
		return nil, err
	}
	defer rows.Close()

	var result []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	query, args := r.db.builder().Select(categoryColumns...).
		From(r.db.table(tableCategories)).
		Where(entsql.EQ("name", name)).
		Query()
	c, err := scanCategory(r.db.SQL.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err, "category "+name)
	}
	return c, nil
}

func (r *categoryRepository) Create(ctx context.Context, in entity.Category) (*entity.Category, error) {
	name := strings.TrimSpace(in.Name)
	if _, err := r.FindByName(ctx, name); err == nil {
		return nil, common.ValidationErrorf("category %q already exists", name)
	} else if !common.IsNotFound(err) {
		return nil, err
	}

	c := &entity.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: in.Description,
		Icon:        in.Icon,
		Color:       in.Color,
		CreatedAt:   r.db.now(),
	}
	if err := r.insert(ctx, r.db.SQL, c); err != nil {
		r.logger.Error("failed to create category", "name", name, "error", err)
		return nil, err
	}
	return c, nil
}

func (r *categoryRepository) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, def := range constants.DefaultCategories() {
			query, args := r.db.builder().Select(entsql.Count("*")).
				From(r.db.table(tableCategories)).
				Where(entsql.EQ("name", def.Name)).
				Query()
			var n int
			if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
				return err
			}
			if n > 0 {
				continue
			}
			c := &entity.Category{
				ID:          uuid.New(),
				Name:        def.Name,
				Description: def.Description,
				Icon:        def.Icon,
				Color:       def.Color,
				CreatedAt:   r.db.now(),
			}
			if err := r.insert(ctx, tx, c); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to seed categories", "error", err)
		return 0, err
	}
	r.logger.Info("categories.seeded", "inserted", inserted)
	return inserted, nil
}

func (r *categoryRepository) insert(ctx context.Context, q querier, c *entity.Category) error {
	query, args := r.db.builder().Insert(tableCategories).
		Columns(categoryColumns...).
		Values(c.ID, c.Name, c.Description, c.Icon, c.Color, c.CreatedAt).
		Query()
	_, err := q.ExecContext(ctx, query, args...)
	return err
}

func scanCategory(s scanner) (*entity.Category, error) {
	var c entity.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
