package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/internal/repositories"
	"github.com/alimgiray/gdocscope/pkg/logger"
)

var (
	documentURLPattern = regexp.MustCompile(`/document/(?:u/\d+/)?d/([A-Za-z0-9_-]+)`)
	documentIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ParseDocumentID accepts a bare document ID or a Google Docs URL
func ParseDocumentID(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("document ID is required")
	}
	if match := documentURLPattern.FindStringSubmatch(arg); match != nil {
		return match[1], nil
	}
	if !documentIDPattern.MatchString(arg) {
		return "", fmt.Errorf("%q is not a Google Docs document ID or URL", arg)
	}
	return arg, nil
}

// DocumentFetcher is the read side of the Google APIs the analysis needs
type DocumentFetcher interface {
	GetDocument(ctx context.Context, documentID string) (*models.Document, error)
	ListRevisions(ctx context.Context, documentID string) ([]*models.Revision, error)
	ListComments(ctx context.Context, documentID string) ([]*models.Comment, error)
	ListActivities(ctx context.Context, documentID string, since time.Time) ([]models.Activity, error)
}

type AnalysisService struct {
	fetcher      DocumentFetcher
	content      *ContentService
	revisionRepo *repositories.RevisionRepository
	statistics   *StatisticsService
	history      *HistoryService
	lookbackDays int
	now          func() time.Time
}

// NewAnalysisService wires the pipeline. A nil content service skips
// revision exports, so only revision counts are attributed.
func NewAnalysisService(
	fetcher DocumentFetcher,
	content *ContentService,
	revisionRepo *repositories.RevisionRepository,
	statistics *StatisticsService,
	history *HistoryService,
	lookbackDays int,
) *AnalysisService {
	return &AnalysisService{
		fetcher:      fetcher,
		content:      content,
		revisionRepo: revisionRepo,
		statistics:   statistics,
		history:      history,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

// fetched holds everything read from the APIs for one document
type fetched struct {
	document   *models.Document
	revisions  []*models.Revision
	comments   []*models.Comment
	activities []models.Activity
}

// Analyze fetches a document completely, then aggregates it
func (s *AnalysisService) Analyze(ctx context.Context, documentID string) (*models.Analysis, error) {
	data, err := s.fetch(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return s.aggregate(data)
}

func (s *AnalysisService) fetch(ctx context.Context, documentID string) (*fetched, error) {
	log := logger.WithField("document_id", documentID)

	document, err := s.fetcher.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	log.WithField("title", document.Title).Info("Fetched document metadata")

	revisions, err := s.fetcher.ListRevisions(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if s.content != nil {
		if err := s.content.LoadRevisionText(ctx, revisions); err != nil {
			return nil, fmt.Errorf("failed to export revisions: %w", err)
		}
	}

	comments, err := s.fetcher.ListComments(ctx, documentID)
	if err != nil {
		return nil, err
	}

	var activities []models.Activity
	if s.lookbackDays > 0 {
		since := s.now().AddDate(0, 0, -s.lookbackDays)
		activities, err = s.fetcher.ListActivities(ctx, documentID, since)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).Warnf("Activity history not available, enable the Drive Activity API for edit metrics")
			activities = nil
		}
	}

	return &fetched{
		document:   document,
		revisions:  revisions,
		comments:   comments,
		activities: activities,
	}, nil
}

func (s *AnalysisService) aggregate(data *fetched) (*models.Analysis, error) {
	documentID := data.document.ID

	if err := s.revisionRepo.CreateBatch(data.revisions); err != nil {
		return nil, fmt.Errorf("failed to store revisions: %w", err)
	}

	aggregation := s.statistics.Aggregate(documentID, data.revisions, data.comments)

	// the text is only needed for diffing
	for _, revision := range data.revisions {
		revision.Text = ""
	}

	if err := s.statistics.Store(documentID, aggregation.Users); err != nil {
		return nil, fmt.Errorf("failed to store user statistics: %w", err)
	}

	daily, err := s.history.DailyMetrics(documentID, data.activities, data.comments)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily metrics: %w", err)
	}

	analysis := &models.Analysis{
		Document:      data.document,
		History:       aggregation.History,
		Daily:         daily,
		Contributions: s.history.EstimateContributions(data.activities),
		Summary:       s.statistics.Summarize(len(data.revisions), data.comments, aggregation.History, daily),
	}

	if analysis.Users, err = s.statistics.Ranked(documentID, repositories.OrderByNetWords); err != nil {
		return nil, err
	}
	if analysis.ByRevisions, err = s.statistics.Ranked(documentID, repositories.OrderByRevisions); err != nil {
		return nil, err
	}
	if analysis.ByComments, err = s.statistics.Ranked(documentID, repositories.OrderByComments); err != nil {
		return nil, err
	}

	return analysis, nil
}
