package gemini

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

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// ExtractItems implements llm.ItemExtractor. PDFs are inlined as base64 parts;
// invoice text is substituted into the prompt.
func (c *Client) ExtractItems(ctx context.Context, req llm.ExtractRequest) ([]any, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"payload", req.Payload.Kind.String(),
		"text_len", len(req.Payload.Text),
		"data_len", len(req.Payload.Data),
	)

	parts := []part{
		{Text: llm.BuildInstructionPrompt(req)},
		{Text: llm.BuildUserPrompt(req.Payload)},
	}
	if req.Payload.Kind == llm.PayloadDocument {
		parts = append(parts, part{InlineData: &inlineData{MimeType: req.Payload.MediaType, Data: req.Payload.Data}})
	}

	body := map[string]any{
		"contents": []content{{Role: "user", Parts: parts}},
		"generationConfig": map[string]any{
			"temperature":      c.cfg.Temperature,
			"responseMimeType": "application/json",
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}
	raw, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, common.ExtractionServiceError(httpErr)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, common.ExtractionServiceError(fmt.Errorf("decode gemini response: %w", err))
	}
	if gr.PromptFeedback.BlockReason != "" {
		c.logger.Warn("llm.extract.blocked", "req_id", rid, "reason", gr.PromptFeedback.BlockReason)
		return nil, raw, common.ExtractionServiceError(fmt.Errorf("prompt blocked: %s", gr.PromptFeedback.BlockReason))
	}
	if len(gr.Candidates) == 0 {
		c.logger.Error("llm.extract.no_candidates",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, common.MalformedOutputError(errors.New("no candidates in gemini response"))
	}

	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := []byte(strings.TrimSpace(b.String()))

	arr, err := llm.ParseItemArray(string(text))
	if err != nil {
		c.logger.Error("llm.extract.parse_failed",
			"req_id", rid, "error", err,
			"finish_reason", gr.Candidates[0].FinishReason,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, text, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"rows", len(arr),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return arr, text, nil
}
