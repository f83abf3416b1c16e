package categories

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

type Service struct {
	logger *slog.Logger
	repo   repository.CategoryRepository
}

func NewService(logger *slog.Logger, repo repository.CategoryRepository) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*entity.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, common.InternalErrorf(err, "failed to list categories")
	}
	return cats, nil
}

func (s *Service) Create(ctx context.Context, in entity.Category) (*entity.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	v := common.NewValidator().
		Field("name", in.Name, common.Required, common.MaxLength(100)).
		Field("icon", in.Icon, common.MaxLength(16))
	if in.Color != "" && !hexColor.MatchString(in.Color) {
		v.Field("color", in.Color, func(field string, value any) *common.FieldError {
			return &common.FieldError{Field: field, Value: value, Message: "must be a hex color like #4caf50"}
		})
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, in)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, common.InternalErrorf(err, "failed to create category")
	}
	s.logger.Info("category.created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

// Seed inserts any missing default categories.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.repo.SeedDefaults(ctx)
	if err != nil {
		return 0, common.InternalErrorf(err, "failed to seed categories")
	}
	return n, nil
}
