package items

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/async"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/expiry"
)

// CategoryResolver looks a category up by exact name. A miss is common.ErrNotFound.
type CategoryResolver interface {
	FindByName(ctx context.Context, name string) (*entity.Category, error)
}

// ItemWriter persists one item together with its Added log.
type ItemWriter interface {
	CreateWithLog(ctx context.Context, item entity.Item, actor *uuid.UUID) (*entity.Item, error)
}

// KitchenLookup checks kitchen ownership.
type KitchenLookup interface {
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*entity.Kitchen, error)
}

type CommitConfig struct {
	Workers        int    // default 4
	CurrencySymbol string // default constants.DefaultCurrencySymbol
}

// Committer turns reviewed invoice rows into inventory items. Each row is its
// own transaction; a failing row is logged and skipped.
type Committer struct {
	Logger     *slog.Logger
	Cfg        CommitConfig
	Categories CategoryResolver
	Items      ItemWriter
	Kitchens   KitchenLookup

	// Now supplies the purchase date. Nil means time.Now.
	Now func() time.Time
}

func NewCommitter(logger *slog.Logger, cfg CommitConfig, cats CategoryResolver, items ItemWriter, kitchens KitchenLookup) *Committer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = constants.DefaultCurrencySymbol
	}
	return &Committer{
		Logger:     logger,
		Cfg:        cfg,
		Categories: cats,
		Items:      items,
		Kitchens:   kitchens,
	}
}

func (c *Committer) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// Commit persists the selected rows into kitchenID and returns how many were added.
// Zero selected rows is a validation error and nothing is written.
func (c *Committer) Commit(ctx context.Context, userID, kitchenID uuid.UUID, rows []entity.CommitRow) (int, error) {
	selected := make([]entity.CandidateItem, 0, len(rows))
	for _, r := range rows {
		if r.Selected {
			selected = append(selected, r.CandidateItem)
		}
	}
	if len(selected) == 0 {
		return 0, common.ValidationErrorf("no items selected")
	}
	if kitchenID == uuid.Nil {
		return 0, common.ValidationErrorf("kitchenId is required")
	}
	if _, err := c.Kitchens.GetForUser(ctx, kitchenID, userID); err != nil {
		if common.IsNotFound(err) {
			return 0, common.NotFoundErrorf("kitchen not found")
		}
		return 0, common.InternalErrorf(err, "failed to load kitchen")
	}

	reqID := common.RequestIDFromContext(ctx)
	start := time.Now()
	today := expiry.Today(c.now())

	var added atomic.Int32
	pool := async.NewPool(c.Logger,
		async.WithWorkers(c.Cfg.Workers),
		async.WithQueueSize(len(selected)),
	)
	for i, row := range selected {
		i, row := i, row
		err := pool.Submit(ctx, async.Job{
			Name: fmt.Sprintf("commit row %d", i),
			Run: func(ctx context.Context) error {
				if err := c.commitRow(ctx, userID, kitchenID, today, row); err != nil {
					c.Logger.Warn("invoice.commit.row_failed", "req_id", reqID, "row", i, "name", row.Name, "error", err)
					return err
				}
				added.Add(1)
				return nil
			},
		})
		if err != nil {
			c.Logger.Warn("invoice.commit.row_not_submitted", "req_id", reqID, "row", i, "error", err)
		}
	}
	if err := pool.Shutdown(context.WithoutCancel(ctx)); err != nil {
		c.Logger.Error("invoice.commit.drain_failed", "req_id", reqID, "error", err)
	}

	n := int(added.Load())
	c.Logger.Info("invoice.commit.done",
		"req_id", reqID,
		"kitchen_id", kitchenID,
		"selected", len(selected),
		"added", n,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

func (c *Committer) commitRow(ctx context.Context, userID, kitchenID uuid.UUID, today time.Time, row entity.CandidateItem) error {
	categoryID, err := c.resolveCategory(ctx, row.Category)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}

	f := normalizeFields(Fields{
		Name:         row.Name,
		Brand:        deref(row.Brand),
		Quantity:     row.Quantity,
		Unit:         row.Unit,
		CategoryID:   categoryID,
		Location:     row.Location,
		PurchaseDate: &today,
		Notes:        c.noteFor(row),
	})
	v := common.NewValidator()
	validateFields(v, f)
	if err := common.ValidateAndReturnError(v); err != nil {
		return err
	}

	item := applyFields(entity.Item{KitchenID: kitchenID}, f)
	status := expiry.StatusForQuantity(item.Quantity, item.ExpiryDate, today)
	if item.Quantity > 0 && constants.ValidStatus(row.Status) {
		status = constants.ItemStatus(row.Status)
	}
	item.Status = string(status)
	_, err = c.Items.CreateWithLog(ctx, item, &userID)
	return err
}

// resolveCategory maps a free-text name to an id. Unknown names resolve to nil.
func (c *Committer) resolveCategory(ctx context.Context, name *string) (*uuid.UUID, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return nil, nil
	}
	cat, err := c.Categories.FindByName(ctx, strings.TrimSpace(*name))
	if err != nil {
		if common.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &cat.ID, nil
}

func (c *Committer) noteFor(row entity.CandidateItem) string {
	if n := strings.TrimSpace(deref(row.Notes)); n != "" {
		return n
	}
	if row.Price != nil {
		return constants.PriceNotePrefix + c.Cfg.CurrencySymbol + row.Price.String()
	}
	return constants.InvoiceNote
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
