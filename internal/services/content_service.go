package services

import (
	"context"
	"errors"
	"io"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/pkg/logger"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// RevisionExporter downloads the text of a revision export link
type RevisionExporter interface {
	ExportRevisionText(ctx context.Context, exportURL string) (string, error)
}

// ContentService fills in revision text and word counts one export at a time
type ContentService struct {
	exporter RevisionExporter
	limiter  *rate.Limiter
	progress io.Writer
}

// NewContentService paces exports at ratePerSecond. Progress is drawn on
// progress when it is not nil.
func NewContentService(exporter RevisionExporter, ratePerSecond float64, progress io.Writer) *ContentService {
	return &ContentService{
		exporter: exporter,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		progress: progress,
	}
}

// LoadRevisionText exports every revision in order. A revision whose export
// is missing or fails keeps the previous word count and is marked as having
// no content; only context cancellation aborts the loop.
func (s *ContentService) LoadRevisionText(ctx context.Context, revisions []*models.Revision) error {
	if len(revisions) == 0 {
		return nil
	}

	bar := s.newProgressBar(len(revisions))
	defer bar.Finish()

	exported := 0
	previousCount := 0
	for _, revision := range revisions {
		revision.WordCount = previousCount
		revision.HasContent = false

		if revision.ExportURL == "" {
			logger.WithField("revision_id", revision.RevisionID).Debugf("Revision has no plain text export")
			_ = bar.Add(1)
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		text, err := s.exporter.ExportRevisionText(ctx, revision.ExportURL)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.WithError(err).WithField("revision_id", revision.RevisionID).Warnf("Failed to get content for revision")
			_ = bar.Add(1)
			continue
		}

		revision.Text = text
		revision.WordCount = CountWords(text)
		revision.HasContent = true
		previousCount = revision.WordCount
		exported++
		_ = bar.Add(1)
	}

	logger.WithFields(map[string]interface{}{
		"revisions": len(revisions),
		"exported":  exported,
	}).Info("Word count analysis complete")

	return nil
}

func (s *ContentService) newProgressBar(total int) *progressbar.ProgressBar {
	if s.progress == nil {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription(color.YellowString("Exporting revisions")),
		progressbar.OptionSetItsString("revisions"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
