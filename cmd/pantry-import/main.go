package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/pantry-tracker/constants"
	"github.com/joseph-ayodele/pantry-tracker/internal/apiclient"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/entity"
	"github.com/joseph-ayodele/pantry-tracker/internal/review"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		api     = flag.String("api", envOr("PANTRY_API", "http://localhost:8080"), "pantry API base URL")
		token   = flag.String("token", os.Getenv("PANTRY_TOKEN"), "bearer token (default $PANTRY_TOKEN)")
		kitchen = flag.String("kitchen", "", "kitchen id (default: current kitchen preference)")
		verbose = flag.Bool("v", false, "log API calls")
	)
	flag.Usage = func() {
		printError("usage: pantry-import [flags] <invoice.pdf|invoice.txt>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *token == "" {
		printError("Error: --token or PANTRY_TOKEN is required\n")
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := common.NewLogger(os.Stderr, common.LogConfig{Level: level})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := apiclient.New(apiclient.Config{BaseURL: *api, Token: *token}, logger)
	if err := run(ctx, client, *kitchen, flag.Arg(0)); err != nil {
		printError("Error: %s\n", message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, client *apiclient.Client, kitchenArg, path string) error {
	kitchenID, err := resolveKitchen(ctx, client, kitchenArg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var res *apiclient.UploadResult
	if _, isDoc := constants.MediaTypeForExt(filepath.Ext(path)); isDoc {
		res, err = client.UploadPDF(ctx, kitchenID, filepath.Base(path), data)
	} else {
		res, err = client.UploadText(ctx, kitchenID, string(data))
	}
	if err != nil {
		return err
	}
	fmt.Printf("found %d item(s)\n", res.ItemsFound)

	r := &repl{
		sess: review.NewSession(res.Items),
		out:  os.Stdout,
		commit: func(ctx context.Context, rows []entity.CommitRow) (int, error) {
			out, err := client.Commit(ctx, kitchenID, rows)
			if err != nil {
				return 0, err
			}
			return out.ItemsAdded, nil
		},
	}
	return r.Run(ctx, os.Stdin)
}

// resolveKitchen uses the flag when set and remembers it, else the server's current kitchen.
func resolveKitchen(ctx context.Context, client *apiclient.Client, arg string) (uuid.UUID, error) {
	if arg != "" {
		id, err := uuid.Parse(arg)
		if err != nil {
			return uuid.Nil, fmt.Errorf("--kitchen must be a UUID: %w", err)
		}
		if err := client.SelectKitchen(ctx, id); err != nil {
			return uuid.Nil, err
		}
		return id, nil
	}
	cur, err := client.CurrentKitchen(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if cur.KitchenID == nil {
		return uuid.Nil, fmt.Errorf("no kitchen yet; create one first or pass --kitchen")
	}
	if cur.Kitchen != nil {
		fmt.Printf("kitchen: %s (%s)\n", cur.Kitchen.Name, cur.Source)
	}
	return *cur.KitchenID, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
