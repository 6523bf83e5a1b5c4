package services

import (
	"sort"
	"time"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/internal/repositories"
)

type HistoryService struct {
	revisionRepo *repositories.RevisionRepository
}

func NewHistoryService(revisionRepo *repositories.RevisionRepository) *HistoryService {
	return &HistoryService{revisionRepo: revisionRepo}
}

// DailyMetrics builds one row per UTC day between the first and the last
// recorded event. Edits come from the content changing entries of the
// activity stream when there are any and from the stored revisions otherwise.
func (s *HistoryService) DailyMetrics(documentID string, activities []models.Activity, comments []*models.Comment) ([]models.DailyMetric, error) {
	metrics := make(map[time.Time]*models.DailyMetric)
	at := func(t time.Time) *models.DailyMetric {
		day := truncateDay(t)
		metric, ok := metrics[day]
		if !ok {
			metric = &models.DailyMetric{Date: day}
			metrics[day] = metric
		}
		return metric
	}

	editActivities := 0
	for _, activity := range activities {
		if activity.ChangesContent() && !activity.Timestamp.IsZero() {
			at(activity.Timestamp).Edits++
			editActivities++
		}
	}

	if editActivities == 0 {
		counts, err := s.revisionRepo.GetDailyCounts(documentID)
		if err != nil {
			return nil, err
		}
		for _, count := range counts {
			at(count.Date).Edits += count.Count
		}
	}

	for _, comment := range comments {
		if comment.CreatedTime.IsZero() {
			continue
		}
		at(comment.CreatedTime).Comments++

		for _, reply := range comment.Replies {
			if !reply.CreatedTime.IsZero() {
				at(reply.CreatedTime).Replies++
			}
		}

		if comment.Resolved {
			at(comment.ResolvedTime()).Resolved++
		}
	}

	return fillDays(metrics), nil
}

// Weights of one activity in words
const (
	documentChangeWords = 10
	editWords           = 5
	deletionWords       = 3
)

// EstimateContributions turns the activity stream into a rough per-actor word
// estimate. Suggestions and activity on other targets are not counted. The
// result is ordered by estimate, largest first.
func (s *HistoryService) EstimateContributions(activities []models.Activity) []models.ActivityContribution {
	byActor := make(map[string]*models.ActivityContribution)
	for _, activity := range activities {
		if !activity.OnDocument || !activity.ChangesContent() {
			continue
		}

		contribution, ok := byActor[activity.Actor]
		if !ok {
			contribution = &models.ActivityContribution{Actor: activity.Actor}
			byActor[activity.Actor] = contribution
		}

		switch activity.Kind {
		case models.ActivityKindCreate:
			contribution.DocumentChanges++
			contribution.EstimatedWords += documentChangeWords
		case models.ActivityKindDelete:
			contribution.Deletions++
			contribution.EstimatedWords += deletionWords
		default:
			contribution.Edits++
			contribution.EstimatedWords += editWords
		}
	}

	result := make([]models.ActivityContribution, 0, len(byActor))
	for _, contribution := range byActor {
		result = append(result, *contribution)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EstimatedWords != result[j].EstimatedWords {
			return result[i].EstimatedWords > result[j].EstimatedWords
		}
		return result[i].Actor < result[j].Actor
	})
	return result
}

// fillDays returns the metrics in date order with empty days in between
func fillDays(metrics map[time.Time]*models.DailyMetric) []models.DailyMetric {
	if len(metrics) == 0 {
		return nil
	}

	var first, last time.Time
	for day := range metrics {
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	var result []models.DailyMetric
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if metric, ok := metrics[day]; ok {
			result = append(result, *metric)
		} else {
			result = append(result, models.DailyMetric{Date: day})
		}
	}
	return result
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
