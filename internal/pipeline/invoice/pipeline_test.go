package invoice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm/gemini"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm/openai"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
)

type fakeExtractor struct {
	calls int
	last  llm.ExtractRequest
	rows  string
	err   error
}

func (f *fakeExtractor) ExtractItems(_ context.Context, req llm.ExtractRequest) ([]any, []byte, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, nil, f.err
	}
	arr, err := llm.ParseItemArray(f.rows)
	if err != nil {
		return nil, []byte(f.rows), err
	}
	return arr, []byte(f.rows), nil
}

type fixture struct {
	pipeline  *Pipeline
	extractor *fakeExtractor
	cats      repository.CategoryRepository
	userID    uuid.UUID
	kitchenID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.OpenInMemory(ctx, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	user, err := repository.NewUserRepository(db, logger).GetOrCreate(ctx, entity.User{ExternalID: "sub"})
	require.NoError(t, err)
	kitchens := repository.NewKitchenRepository(db, logger)
	k, err := kitchens.Create(ctx, entity.Kitchen{UserID: user.ID, Name: "Home"}, false)
	require.NoError(t, err)

	ex := &fakeExtractor{}
	cats := repository.NewCategoryRepository(db, logger)
	return &fixture{
		pipeline:  NewPipeline(logger, Config{}, kitchens, cats, ex),
		extractor: ex,
		cats:      cats,
		userID:    user.ID,
		kitchenID: k.ID,
	}
}

func TestRunTextInvoice(t *testing.T) {
	f := newFixture(t)
	f.extractor.rows = "```json\n" +
		`[{"name":"Tomatoes","quantity":1,"unit":"kg","category":"Vegetables","price":30},` +
		`{"name":"Milk","quantity":1,"unit":"l","category":"Dairy","location":"Fridge","price":"₹65"},` +
		`{"name":"  ","quantity":3}]` + "\n```"

	res, err := f.pipeline.Run(context.Background(), f.userID, f.kitchenID, llm.Input{
		Text: "Tomatoes | 1kg | ₹30\nMilk | 1l | ₹65",
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Tomatoes", res.Items[0].Name)
	assert.Equal(t, "Milk", res.Items[1].Name)
	assert.Equal(t, "Fridge", res.Items[1].Location)
	require.NotNil(t, res.Items[1].Price)
	assert.Equal(t, "65", res.Items[1].Price.String())
	assert.Len(t, res.Dropped, 1)

	assert.Equal(t, llm.PayloadText, f.extractor.last.Payload.Kind)
	assert.Equal(t, constants.DefaultCategoryNames(), f.extractor.last.Categories)
	assert.Equal(t, constants.Locations(), f.extractor.last.Locations)
}

func TestRunUsesStoredCategories(t *testing.T) {
	f := newFixture(t)
	_, err := f.cats.Create(context.Background(), entity.Category{Name: "Spices"})
	require.NoError(t, err)
	f.extractor.rows = `[{"name":"Cumin"}]`

	_, err = f.pipeline.Run(context.Background(), f.userID, f.kitchenID, llm.Input{Text: "Cumin 100g"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Spices"}, f.extractor.last.Categories)
}

func TestRunDocumentPayload(t *testing.T) {
	f := newFixture(t)
	f.extractor.rows = `[{"name":"Rice","quantity":"2"}]`

	res, err := f.pipeline.Run(context.Background(), f.userID, f.kitchenID, llm.Input{
		Document:  []byte("%PDF-1.4 fake"),
		MediaType: "application/pdf",
		Filename:  "bill.pdf",
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Items[0].Quantity)
	assert.Equal(t, llm.PayloadDocument, f.extractor.last.Payload.Kind)
	assert.NotEmpty(t, f.extractor.last.Payload.Data)
}

func TestRunNoItemsFound(t *testing.T) {
	f := newFixture(t)
	f.extractor.rows = `[]`
	_, err := f.pipeline.Run(context.Background(), f.userID, f.kitchenID, llm.Input{Text: "nothing useful"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoItemsFound)
	assert.Equal(t, common.CodeNoItemsFound, common.CodeOf(err))
}

func TestRunPropagatesExtractionFailures(t *testing.T) {
	f := newFixture(t)

	f.extractor.err = common.ExtractionServiceError(errors.New("quota exceeded"))
	_, err := f.pipeline.Run(context.Background(), f.userID, f.kitchenID, llm.Input{Text: "x"})
	assert.ErrorIs(t, err, common.ErrExtractionService)

	f.extractor.err = nil
	f.extractor.rows = "Sorry, I cannot read this invoice."
	_, err = f.pipeline.Run(context.Background(), f.userID, f.kitchenID, llm.Input{Text: "x"})
	assert.ErrorIs(t, err, common.ErrMalformedOutput)
}

func TestRunRejectsBeforeCallingService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Run(ctx, f.userID, uuid.Nil, llm.Input{Text: "x"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.pipeline.Run(ctx, f.userID, f.kitchenID, llm.Input{})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.pipeline.Run(ctx, f.userID, f.kitchenID, llm.Input{Document: []byte("GIF89a"), MediaType: "image/gif"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.pipeline.Run(ctx, uuid.New(), f.kitchenID, llm.Input{Text: "x"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Zero(t, f.extractor.calls)
}

func TestNewExtractorProviders(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ex, err := NewExtractor(common.LLMConfig{Provider: common.ProviderGemini, GeminiAPIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, ex)

	ex, err = NewExtractor(common.LLMConfig{Provider: common.ProviderOpenAI, OpenAIAPIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, ex)

	_, err = NewExtractor(common.LLMConfig{Provider: "claude"}, logger)
	assert.Error(t, err)
	assert.Equal(t, common.CodeConfig, common.CodeOf(err))
}
