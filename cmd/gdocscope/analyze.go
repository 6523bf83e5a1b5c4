package main

import (
	"fmt"
	"io"
	"time"

	"github.com/alimgiray/gdocscope/internal/reports"
	"github.com/alimgiray/gdocscope/internal/repositories"
	"github.com/alimgiray/gdocscope/internal/services"
	"github.com/alimgiray/gdocscope/pkg/config"
	"github.com/alimgiray/gdocscope/pkg/database"
	"github.com/alimgiray/gdocscope/pkg/logger"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func analyzeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		_ = cli.ShowAppHelp(c)
		return fmt.Errorf("expected one document ID, got %d arguments", c.NArg())
	}
	documentID, err := services.ParseDocumentID(c.Args().First())
	if err != nil {
		return err
	}

	// Load configuration
	if err := config.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.AppConfig
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Configure(cfg.Log.Level, cfg.Log.Format, c.App.ErrWriter)
	log := logger.WithFields(logrus.Fields{
		"run_id":      uuid.NewString(),
		"document_id": documentID,
	})

	// Initialize the run-scoped store
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	revisionRepo := repositories.NewRevisionRepository(database.DB)
	userStatRepo := repositories.NewUserStatRepository(database.DB)

	// Authorize
	authService, err := services.NewAuthService(
		cfg.Google.CredentialsFile,
		cfg.Google.TokenFile,
		cfg.OAuth.CallbackAddr,
		time.Duration(cfg.OAuth.TimeoutSeconds)*time.Second,
		c.App.ErrWriter,
	)
	if err != nil {
		return err
	}
	httpClient, err := authService.HTTPClient(c.Context)
	if err != nil {
		return err
	}

	googleService, err := services.NewGoogleService(c.Context, httpClient)
	if err != nil {
		return err
	}
	email, err := googleService.AuthenticatedEmail(c.Context)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.App.ErrWriter, "Successfully authenticated as: %s\n", email)

	var contentService *services.ContentService
	if !cfg.Fetch.SkipContent {
		contentService = services.NewContentService(googleService, cfg.Fetch.ExportRatePerSecond, c.App.ErrWriter)
	}

	analysisService := services.NewAnalysisService(
		googleService,
		contentService,
		revisionRepo,
		services.NewStatisticsService(userStatRepo, cfg.Analysis.WordChangeThreshold),
		services.NewHistoryService(revisionRepo),
		cfg.Fetch.ActivityLookbackDays,
	)

	log.Info("Starting document analysis")
	analysis, err := analysisService.Analyze(c.Context, documentID)
	if err != nil {
		return err
	}

	for _, reporter := range reportersFor(cfg.Report, c.App.Writer) {
		if err := reporter.Report(analysis); err != nil {
			return err
		}
	}

	log.Info("Document analysis complete")
	return nil
}

// applyFlags lets command line flags override the environment
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("credentials") {
		cfg.Google.CredentialsFile = c.String("credentials")
	}
	if c.IsSet("token") {
		cfg.Google.TokenFile = c.String("token")
	}
	if c.IsSet("output") {
		cfg.Report.HTMLFile = c.String("output")
	}
	if c.IsSet("xlsx") {
		cfg.Report.XLSXFile = c.String("xlsx")
	}
	if c.IsSet("format") {
		cfg.Report.Format = c.String("format")
	}
	if c.IsSet("skip-content") {
		cfg.Fetch.SkipContent = c.Bool("skip-content")
	}
	if c.IsSet("lookback-days") {
		cfg.Fetch.ActivityLookbackDays = c.Int("lookback-days")
	}
	if c.IsSet("export-rate") {
		cfg.Fetch.ExportRatePerSecond = c.Float64("export-rate")
	}
	if c.IsSet("threshold") {
		cfg.Analysis.WordChangeThreshold = c.Int("threshold")
	}
}

// reportersFor picks the console format and the file outputs
func reportersFor(cfg config.ReportConfig, out io.Writer) []reports.Reporter {
	var reporters []reports.Reporter
	if cfg.Format == "yaml" {
		reporters = append(reporters, reports.NewYAMLReporter(out))
	} else {
		reporters = append(reporters, reports.NewConsoleReporter(out))
	}
	if cfg.HTMLFile != "" {
		reporters = append(reporters, reports.NewHTMLReporter(cfg.HTMLFile))
	}
	if cfg.XLSXFile != "" {
		reporters = append(reporters, reports.NewWorkbookReporter(cfg.XLSXFile))
	}
	return reporters
}
