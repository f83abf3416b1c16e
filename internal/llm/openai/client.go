package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm"
)

// ExtractItems implements llm.ItemExtractor using chat/completions. Text invoices are
// sent inline; PDF invoices are attached as a file content part.
func (c *Client) ExtractItems(ctx context.Context, req llm.ExtractRequest) ([]any, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"payload", req.Payload.Kind.String(),
		"text_len", len(req.Payload.Text),
		"data_len", len(req.Payload.Data),
		"categories", len(req.Categories),
		"locations", len(req.Locations),
	)

	userContent := []map[string]any{
		{"type": "text", "text": llm.BuildUserPrompt(req.Payload)},
	}
	if req.Payload.Kind == llm.PayloadDocument {
		filename := req.Payload.Filename
		if filename == "" {
			filename = "invoice.pdf"
		}
		userContent = append(userContent, map[string]any{
			"type": "file",
			"file": map[string]any{
				"filename":  filename,
				"file_data": req.Payload.DataURL(),
			},
		})
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildInstructionPrompt(req)},
			{"role": "user", "content": userContent},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, common.ExtractionServiceError(httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, common.ExtractionServiceError(fmt.Errorf("decode openai response: %w", err))
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, common.MalformedOutputError(errors.New("no choices in openai response"))
	}

	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))
	arr, err := llm.ParseItemArray(string(content))
	if err != nil {
		c.logger.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err, "content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, content, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"rows", len(arr),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return arr, content, nil
}
