// Package apiclient talks to the pantry HTTP API on behalf of the terminal tools.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
)

type Config struct {
	BaseURL string // e.g. http://localhost:8080
	Token   string
	Timeout time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// UploadResult is the reply of an invoice upload.
type UploadResult struct {
	ItemsFound int                    `json:"itemsFound"`
	Items      []entity.CandidateItem `json:"items"`
}

// CommitResult is the reply of an invoice commit.
type CommitResult struct {
	ItemsAdded int    `json:"itemsAdded"`
	Message    string `json:"message"`
}

// CurrentKitchen is the resolved kitchen preference.
type CurrentKitchen struct {
	KitchenID *uuid.UUID      `json:"kitchenId"`
	Source    string          `json:"source"`
	Kitchen   *entity.Kitchen `json:"kitchen"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func New(cfg Config, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		// extraction can take a while
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

func (c *Client) ListKitchens(ctx context.Context) ([]*entity.Kitchen, error) {
	var out struct {
		Kitchens []*entity.Kitchen `json:"kitchens"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/kitchens", nil, &out); err != nil {
		return nil, err
	}
	return out.Kitchens, nil
}

func (c *Client) CurrentKitchen(ctx context.Context) (*CurrentKitchen, error) {
	var out CurrentKitchen
	if err := c.doJSON(ctx, http.MethodGet, "/api/preferences/kitchen", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SelectKitchen(ctx context.Context, kitchenID uuid.UUID) error {
	return c.doJSON(ctx, http.MethodPut, "/api/preferences/kitchen", map[string]string{"kitchenId": kitchenID.String()}, nil)
}

func (c *Client) UploadText(ctx context.Context, kitchenID uuid.UUID, text string) (*UploadResult, error) {
	var out UploadResult
	body := map[string]string{"invoiceText": text, "kitchenId": kitchenID.String()}
	if err := c.doJSON(ctx, http.MethodPost, "/api/invoices/upload", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadPDF(ctx context.Context, kitchenID uuid.UUID, filename string, data []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("kitchenId", kitchenID.String()); err != nil {
		return nil, err
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pdfFile"; filename=%q`, filename))
	hdr.Set("Content-Type", constants.InvoiceMediaType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/api/invoices/upload", &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Commit(ctx context.Context, kitchenID uuid.UUID, rows []entity.CommitRow) (*CommitResult, error) {
	var out CommitResult
	body := map[string]any{"items": rows, "kitchenId": kitchenID.String()}
	if err := c.doJSON(ctx, http.MethodPost, "/api/invoices/commit", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		r, contentType = bytes.NewReader(bs), "application/json"
	}
	return c.do(ctx, method, path, r, contentType, out)
}

// do sends one request. A non-2xx reply becomes the *common.AppError the server reported.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	reqID := uuid.NewString()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("apiclient.send_error", "req_id", reqID, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("apiclient.response",
		"req_id", reqID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		var eb errorBody
		if jerr := json.Unmarshal(raw, &eb); jerr != nil || eb.Code == "" {
			return common.NewAppError(common.CodeInternal, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		}
		return common.NewAppError(eb.Code, eb.Error, sentinelFor(eb.Code))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func sentinelFor(code string) error {
	switch code {
	case common.CodeValidation:
		return common.ErrValidation
	case common.CodeNotFound:
		return common.ErrNotFound
	case common.CodeUnauthorized:
		return common.ErrUnauthorized
	case common.CodeNoItemsFound:
		return common.ErrNoItemsFound
	case common.CodeExtractionService:
		return common.ErrExtractionService
	case common.CodeMalformedOutput:
		return common.ErrMalformedOutput
	default:
		return common.ErrInternal
	}
}
