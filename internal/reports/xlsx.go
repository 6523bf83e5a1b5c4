package reports

import (
	"fmt"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	usersSheet    = "Users"
	historySheet  = "Word History"
	dailySheet    = "Daily"
	activitySheet = "Activity"
)

// WorkbookReporter saves the per-user table, the word history, the daily
// metrics and the activity estimates as sheets of an XLSX workbook
type WorkbookReporter struct {
	path string
}

func NewWorkbookReporter(path string) *WorkbookReporter {
	return &WorkbookReporter{path: path}
}

func (r *WorkbookReporter) Report(analysis *models.Analysis) error {
	workbook, err := BuildWorkbook(analysis)
	if err != nil {
		return err
	}
	defer workbook.Close()

	if err := workbook.SaveAs(r.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", r.path, err)
	}

	logger.WithField("path", r.path).Info("Workbook saved")
	return nil
}

// BuildWorkbook lays the analysis out in an in-memory workbook
func BuildWorkbook(analysis *models.Analysis) (*excelize.File, error) {
	workbook := excelize.NewFile()

	if err := workbook.SetSheetName("Sheet1", usersSheet); err != nil {
		workbook.Close()
		return nil, fmt.Errorf("failed to create workbook: %w", err)
	}
	for _, sheet := range []string{historySheet, dailySheet, activitySheet} {
		if _, err := workbook.NewSheet(sheet); err != nil {
			workbook.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	headerStyle, err := workbook.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		workbook.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name   string
		header []interface{}
		rows   [][]interface{}
	}{
		{
			name: usersSheet,
			header: []interface{}{
				"User", "Email", "Revisions", "Words Added", "Words Removed", "Net Words",
				"Content Revisions", "Avg Words/Edit", "Comments", "Replies", "Own Resolved", "Resolved Threads",
				"First Modified", "Last Modified",
			},
			rows: userRows(analysis.Users),
		},
		{
			name:   historySheet,
			header: []interface{}{"Timestamp", "Total Words", "Word Change", "User", "Email"},
			rows:   historyRows(analysis.History),
		},
		{
			name:   dailySheet,
			header: []interface{}{"Date", "Edits", "Comments", "Replies", "Resolved"},
			rows:   dailyRows(analysis.Daily),
		},
		{
			name:   activitySheet,
			header: []interface{}{"User", "Document Changes", "Edits", "Deletions", "Estimated Words"},
			rows:   activityRows(analysis.Contributions),
		},
	}

	for _, sheet := range sheets {
		if err := writeSheet(workbook, sheet.name, headerStyle, sheet.header, sheet.rows); err != nil {
			workbook.Close()
			return nil, err
		}
	}

	return workbook, nil
}

func writeSheet(workbook *excelize.File, sheet string, headerStyle int, header []interface{}, rows [][]interface{}) error {
	if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := workbook.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastColumn, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return workbook.SetColWidth(sheet, "A", lastColumn, 18)
}

func userRows(stats []*models.UserStat) [][]interface{} {
	rows := make([][]interface{}, 0, len(stats))
	for _, stat := range stats {
		rows = append(rows, []interface{}{
			stat.User.Key(),
			stat.User.Email,
			stat.Revisions,
			stat.WordsAdded,
			stat.WordsRemoved,
			stat.NetWords,
			stat.ContentRevisions,
			stat.AvgWordsPerEdit(),
			stat.Comments,
			stat.Replies,
			stat.ResolvedComments,
			stat.Resolutions,
			formatTimePtr(stat.FirstModified),
			formatTimePtr(stat.LastModified),
		})
	}
	return rows
}

func historyRows(history []models.WordPoint) [][]interface{} {
	rows := make([][]interface{}, 0, len(history))
	for _, point := range history {
		rows = append(rows, []interface{}{
			formatTime(point.Timestamp),
			point.TotalWords,
			point.WordChange,
			point.User.Key(),
			point.User.Email,
		})
	}
	return rows
}

func dailyRows(daily []models.DailyMetric) [][]interface{} {
	rows := make([][]interface{}, 0, len(daily))
	for _, day := range daily {
		rows = append(rows, []interface{}{
			day.Date.Format(dateLayout),
			day.Edits,
			day.Comments,
			day.Replies,
			day.Resolved,
		})
	}
	return rows
}

func activityRows(contributions []models.ActivityContribution) [][]interface{} {
	rows := make([][]interface{}, 0, len(contributions))
	for _, contribution := range contributions {
		rows = append(rows, []interface{}{
			contribution.Actor,
			contribution.DocumentChanges,
			contribution.Edits,
			contribution.Deletions,
			contribution.EstimatedWords,
		})
	}
	return rows
}
