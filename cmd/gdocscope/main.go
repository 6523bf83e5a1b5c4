package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/gdocscope/internal/services"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func main() {
	// Cancel API calls and the consent wait on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(analyzeAction)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		printError(err)
		os.Exit(1)
	}
}

func newApp(action cli.ActionFunc) *cli.App {
	return &cli.App{
		Name:      "gdocscope",
		Usage:     "contribution analytics for a Google Doc",
		ArgsUsage: "<document-id or URL>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "OAuth client secrets file (default credentials.json, env GOOGLE_CREDENTIALS_FILE)",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "token cache file (default token.json, env GOOGLE_TOKEN_FILE)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "HTML chart file (default document_metrics.html, env REPORT_FILE)",
			},
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "also write the tables to this XLSX workbook (env XLSX_FILE)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "console output format: text or yaml (env REPORT_FORMAT)",
			},
			&cli.BoolFlag{
				Name:  "skip-content",
				Usage: "do not export revision text, count revisions only (env SKIP_CONTENT)",
			},
			&cli.IntFlag{
				Name:  "lookback-days",
				Usage: "days of Drive activity to read, 0 disables it (default 365, env ACTIVITY_LOOKBACK_DAYS)",
			},
			&cli.Float64Flag{
				Name:  "export-rate",
				Usage: "revision exports per second (default 0.5, env EXPORT_RATE_PER_SECOND)",
			},
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "smallest word change recorded in the history (default 2, env WORD_CHANGE_THRESHOLD)",
			},
		},
		Action: action,
	}
}

func printError(err error) {
	red := color.New(color.FgRed)
	red.Fprintf(os.Stderr, "Error: %v\n", err)

	switch {
	case errors.Is(err, services.ErrAuth):
		fmt.Fprintln(os.Stderr, "Check credentials.json or delete the token cache to authorize again.")
	case errors.Is(err, services.ErrNotFound):
		fmt.Fprintln(os.Stderr, "Check the document ID and that the authorized account can open the document.")
	case errors.Is(err, services.ErrPermission):
		fmt.Fprintln(os.Stderr, "The authorized account cannot read this document or the API is not enabled for the project.")
	}
}
