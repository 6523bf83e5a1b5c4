package reports

import (
	"fmt"
	"io"
	"os"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/alimgiray/gdocscope/pkg/logger"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "1100px"
	chartHeight = "420px"
	dateLayout  = "2006-01-02"
)

// HTMLReporter saves the analysis charts as a standalone HTML page
type HTMLReporter struct {
	path string
}

func NewHTMLReporter(path string) *HTMLReporter {
	return &HTMLReporter{path: path}
}

func (r *HTMLReporter) Report(analysis *models.Analysis) error {
	file, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", r.path, err)
	}

	if err := RenderHTML(file, analysis); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}

	logger.WithField("path", r.path).Info("Historical metrics plot saved")
	return nil
}

// RenderHTML writes every chart that has data to w
func RenderHTML(w io.Writer, analysis *models.Analysis) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Historical Metrics for %s", analysis.Document.Title)

	if len(analysis.History) > 0 {
		page.AddCharts(wordGrowthChart(analysis), wordChangeChart(analysis))
	}
	if len(editors(analysis.Users)) > 0 {
		page.AddCharts(contributionChart(analysis))
	}
	if len(analysis.Daily) > 0 {
		page.AddCharts(dailyActivityChart(analysis))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func chartOptions(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	}
}

func wordGrowthChart(analysis *models.Analysis) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartOptions("Word Count Growth", analysis.Document.Title)...)

	timestamps := make([]string, 0, len(analysis.History))
	totals := make([]opts.LineData, 0, len(analysis.History))
	for _, point := range analysis.History {
		timestamps = append(timestamps, formatTime(point.Timestamp))
		totals = append(totals, opts.LineData{Value: point.TotalWords, Name: point.User.Key()})
	}

	line.SetXAxis(timestamps).AddSeries("Total Words", totals)
	return line
}

func wordChangeChart(analysis *models.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartOptions("Word Changes", "per recorded revision")...)

	timestamps := make([]string, 0, len(analysis.History))
	changes := make([]opts.BarData, 0, len(analysis.History))
	for _, point := range analysis.History {
		timestamps = append(timestamps, formatTime(point.Timestamp))
		changes = append(changes, opts.BarData{Value: point.WordChange, Name: point.User.Key()})
	}

	bar.SetXAxis(timestamps).AddSeries("Word Change", changes)
	return bar
}

func contributionChart(analysis *models.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartOptions("User Contributions", "words and revisions per user")...)

	stats := editors(analysis.Users)
	names := make([]string, 0, len(stats))
	added := make([]opts.BarData, 0, len(stats))
	removed := make([]opts.BarData, 0, len(stats))
	revisions := make([]opts.BarData, 0, len(stats))
	for _, stat := range stats {
		names = append(names, stat.User.Key())
		added = append(added, opts.BarData{Value: stat.WordsAdded})
		removed = append(removed, opts.BarData{Value: stat.WordsRemoved})
		revisions = append(revisions, opts.BarData{Value: stat.Revisions})
	}

	bar.SetXAxis(names)
	if analysis.Summary.HasWordData {
		bar.AddSeries("Words Added", added).AddSeries("Words Removed", removed)
	}
	bar.AddSeries("Revisions", revisions)
	return bar
}

func dailyActivityChart(analysis *models.Analysis) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(chartOptions("Daily Activity", "edits, comments, replies and resolutions per day")...)

	days := make([]string, 0, len(analysis.Daily))
	edits := make([]opts.LineData, 0, len(analysis.Daily))
	comments := make([]opts.LineData, 0, len(analysis.Daily))
	replies := make([]opts.LineData, 0, len(analysis.Daily))
	resolved := make([]opts.LineData, 0, len(analysis.Daily))
	for _, day := range analysis.Daily {
		days = append(days, day.Date.Format(dateLayout))
		edits = append(edits, opts.LineData{Value: day.Edits})
		comments = append(comments, opts.LineData{Value: day.Comments})
		replies = append(replies, opts.LineData{Value: day.Replies})
		resolved = append(resolved, opts.LineData{Value: day.Resolved})
	}

	line.SetXAxis(days).
		AddSeries("Edits", edits).
		AddSeries("Comments", comments).
		AddSeries("Replies", replies).
		AddSeries("Resolved", resolved)
	return line
}
