// Package invoice runs the invoice ingestion stages up to the review step:
// normalize the upload, call the extraction service, sanitize its rows.
package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

// Config holds limits for the extraction stage.
type Config struct {
	MaxUploadBytes int64 // default constants.MaxUploadBytes
}

// Result is the sanitized candidate list handed to review.
type Result struct {
	Items   []entity.CandidateItem
	Dropped []string
	RawText []byte
}

type Pipeline struct {
	Logger         *slog.Logger
	Cfg            Config
	KitchensRepo   repository.KitchenRepository
	CategoriesRepo repository.CategoryRepository
	Extractor      llm.ItemExtractor
}

func NewPipeline(
	logger *slog.Logger,
	cfg Config,
	kitchens repository.KitchenRepository,
	cats repository.CategoryRepository,
	ex llm.ItemExtractor,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = constants.MaxUploadBytes
	}
	return &Pipeline{
		Logger:         logger,
		Cfg:            cfg,
		KitchensRepo:   kitchens,
		CategoriesRepo: cats,
		Extractor:      ex,
	}
}

// Run extracts candidate items from in for a kitchen owned by userID.
// Zero sanitized rows is reported as NoItemsFoundError.
func (p *Pipeline) Run(ctx context.Context, userID, kitchenID uuid.UUID, in llm.Input) (*Result, error) {
	if kitchenID == uuid.Nil {
		return nil, common.ValidationErrorf("kitchenId is required")
	}
	payload, err := llm.Normalize(in, p.Cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	if _, err := p.KitchensRepo.GetForUser(ctx, kitchenID, userID); err != nil {
		if common.IsNotFound(err) {
			return nil, common.NotFoundErrorf("kitchen not found")
		}
		return nil, common.InternalErrorf(err, "failed to load kitchen")
	}

	req := llm.ExtractRequest{
		Payload:    payload,
		Categories: p.categoryVocabulary(ctx),
		Locations:  constants.Locations(),
	}

	start := time.Now()
	p.Logger.Info("invoice.extract.start",
		"req_id", common.RequestIDFromContext(ctx),
		"kitchen_id", kitchenID,
		"payload", payload.Kind.String(),
		"categories", len(req.Categories),
	)
	raw, rawText, err := p.Extractor.ExtractItems(ctx, req)
	if err != nil {
		p.Logger.Error("invoice.extract.failed",
			"req_id", common.RequestIDFromContext(ctx),
			"code", common.CodeOf(err),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	items, dropped := llm.SanitizeCandidates(raw)
	for _, d := range dropped {
		p.Logger.Warn("invoice.sanitize.dropped", "req_id", common.RequestIDFromContext(ctx), "reason", d)
	}
	p.Logger.Info("invoice.extract.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"rows", len(raw),
		"kept", len(items),
		"dropped", len(dropped),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if len(items) == 0 {
		return nil, common.NoItemsFoundError()
	}
	return &Result{Items: items, Dropped: dropped, RawText: rawText}, nil
}

// categoryVocabulary returns the stored category names, falling back to the
// defaults when the table is empty or unreadable.
func (p *Pipeline) categoryVocabulary(ctx context.Context) []string {
	cats, err := p.CategoriesRepo.ListCategories(ctx)
	if err != nil {
		p.Logger.Warn("invoice.categories.unavailable", "error", fmt.Errorf("list categories: %w", err))
		return constants.DefaultCategoryNames()
	}
	if len(cats) == 0 {
		return constants.DefaultCategoryNames()
	}
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}
