package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/llm"
	"github.com/joseph-ayodele/pantry-tracker/internal/pipeline/invoice"
)

// extract runs one invoice file through normalize -> extract -> sanitize and
// prints the candidate rows as JSON. Nothing is written to the database.
func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		common.NewLogger(os.Stderr, common.LogConfig{}).Error("load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stderr, cfg.Log)

	if len(os.Args) < 2 {
		logger.Error("usage: extract <invoice.pdf|invoice.txt> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 1
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	extractor, err := invoice.NewExtractor(cfg.LLM, logger)
	if err != nil {
		logger.Error("build extractor", "error", err)
		os.Exit(2)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}
	in := llm.Input{Text: string(data)}
	if mt, isDoc := constants.MediaTypeForExt(filepath.Ext(path)); isDoc {
		in = llm.Input{Document: data, MediaType: mt, Filename: filepath.Base(path)}
	}
	payload, err := llm.Normalize(in, cfg.Ingest.MaxUploadBytes)
	if err != nil {
		logger.Error("normalize", "path", path, "error", err)
		os.Exit(1)
	}

	req := llm.ExtractRequest{
		Payload:    payload,
		Categories: constants.DefaultCategoryNames(),
		Locations:  constants.Locations(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	failed := false
	for i := 1; i <= times; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.LLM.Timeout+10*time.Second)
		start := time.Now()
		logger.Info("extract.run.start", "iter", i, "kind", payload.Kind.String(), "basename", filepath.Base(path))

		raw, _, err := extractor.ExtractItems(ctx, req)
		cancel()
		if err != nil {
			logger.Error("extract.run.error", "iter", i, "code", common.CodeOf(err), "error", err)
			failed = true
			continue
		}
		items, dropped := llm.SanitizeCandidates(raw)
		logger.Info("extract.run.ok",
			"iter", i,
			"items", len(items),
			"dropped", len(dropped),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if err := enc.Encode(items); err != nil {
			logger.Error("encode output", "error", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}
