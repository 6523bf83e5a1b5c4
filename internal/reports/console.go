package reports

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alimgiray/gdocscope/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	titleColor   = color.New(color.FgBlue, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
	noticeColor  = color.New(color.FgYellow)
)

// ConsoleReporter prints the analysis as aligned text tables
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Report(analysis *models.Analysis) error {
	titleColor.Fprintln(r.out, "\nDocument Analytics Report")

	sections := []func(*models.Analysis) error{
		r.documentInformation,
		r.wordStatistics,
		r.wordHistory,
		r.contributions,
		r.activityEstimates,
		r.commentActivity,
		r.summary,
	}
	for _, section := range sections {
		if err := section(analysis); err != nil {
			return err
		}
	}
	return nil
}

// table writes a heading followed by tab separated rows
func (r *ConsoleReporter) table(heading string, header []string, rows [][]string) error {
	headingColor.Fprintf(r.out, "\n%s\n", heading)

	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	underline := make([]string, len(header))
	for i, column := range header {
		underline[i] = strings.Repeat("-", len(column))
	}
	fmt.Fprintln(w, strings.Join(underline, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (r *ConsoleReporter) documentInformation(analysis *models.Analysis) error {
	doc := analysis.Document
	return r.table("Document Information", []string{"Field", "Value"}, [][]string{
		{"Title", doc.Title},
		{"Document ID", doc.ID},
		{"Owner", formatUser(doc.Owner)},
		{"Created", formatTime(doc.CreatedTime)},
		{"Last Modified", formatTime(doc.ModifiedTime)},
		{"Last Modified By", formatUser(doc.LastModifier)},
	})
}

func (r *ConsoleReporter) wordStatistics(analysis *models.Analysis) error {
	if !analysis.Summary.HasWordData {
		noticeColor.Fprintln(r.out, "\nWord statistics not available, revision content was not exported.")
		return nil
	}

	var rows [][]string
	for _, stat := range editors(analysis.Users) {
		rows = append(rows, []string{
			stat.User.Key(),
			emailOrDash(stat.User),
			humanize.Comma(int64(stat.WordsAdded)),
			humanize.Comma(int64(stat.WordsRemoved)),
			humanize.Comma(int64(stat.NetWords)),
			fmt.Sprint(stat.ContentRevisions),
			fmt.Sprintf("%.1f", stat.AvgWordsPerEdit()),
		})
	}
	return r.table("User Word Count Statistics",
		[]string{"User", "Email", "Words Added", "Words Removed", "Net Change", "Edits", "Avg Words/Edit"},
		rows)
}

func (r *ConsoleReporter) wordHistory(analysis *models.Analysis) error {
	if len(analysis.History) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(analysis.History))
	for _, point := range analysis.History {
		rows = append(rows, []string{
			formatTime(point.Timestamp),
			humanize.Comma(int64(point.TotalWords)),
			fmt.Sprintf("%+d", point.WordChange),
			point.User.Key(),
			emailOrDash(point.User),
		})
	}
	return r.table("Word Count History",
		[]string{"Timestamp", "Total Words", "Word Change", "User", "Email"},
		rows)
}

func (r *ConsoleReporter) contributions(analysis *models.Analysis) error {
	var rows [][]string
	for _, stat := range editors(analysis.ByRevisions) {
		rows = append(rows, []string{
			stat.User.Key(),
			emailOrDash(stat.User),
			fmt.Sprint(stat.Revisions),
			formatTimePtr(stat.FirstModified),
			formatTimePtr(stat.LastModified),
		})
	}
	return r.table("User Contributions",
		[]string{"User", "Email", "Revisions", "First Modified", "Last Modified"},
		rows)
}

func (r *ConsoleReporter) activityEstimates(analysis *models.Analysis) error {
	if len(analysis.Contributions) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(analysis.Contributions))
	for _, contribution := range analysis.Contributions {
		rows = append(rows, []string{
			contribution.Actor,
			fmt.Sprint(contribution.DocumentChanges),
			fmt.Sprint(contribution.Edits),
			fmt.Sprint(contribution.Deletions),
			humanize.Comma(int64(contribution.EstimatedWords)),
		})
	}
	return r.table("Estimated Word Contributions",
		[]string{"User", "Document Changes", "Edits", "Deletions", "Estimated Words"},
		rows)
}

func (r *ConsoleReporter) commentActivity(analysis *models.Analysis) error {
	active := commenters(analysis.ByComments)
	if len(active) == 0 {
		noticeColor.Fprintln(r.out, "\nNo comments on this document.")
		return nil
	}

	rows := make([][]string, 0, len(active))
	for _, stat := range active {
		rows = append(rows, []string{
			stat.User.Key(),
			emailOrDash(stat.User),
			fmt.Sprint(stat.Comments),
			fmt.Sprint(stat.Replies),
			fmt.Sprint(stat.ResolvedComments),
			fmt.Sprint(stat.Resolutions),
		})
	}
	return r.table("Comment Activity",
		[]string{"User", "Email", "Comments Made", "Replies Made", "Own Resolved", "Resolved Threads"},
		rows)
}

func (r *ConsoleReporter) summary(analysis *models.Analysis) error {
	s := analysis.Summary
	rows := [][]string{
		{"Total Revisions", humanize.Comma(int64(s.TotalRevisions))},
		{"Total Edits", humanize.Comma(int64(s.TotalEdits))},
		{"Total Comments", humanize.Comma(int64(s.TotalComments))},
		{"Total Replies", humanize.Comma(int64(s.TotalReplies))},
		{"Total Resolved Comments", humanize.Comma(int64(s.TotalResolved))},
	}
	if s.TotalComments > 0 {
		rows = append(rows, []string{"Comment Resolution Rate", fmt.Sprintf("%.1f%%", s.ResolutionRate)})
	}
	if s.HasWordData {
		rows = append(rows,
			[]string{"Current Word Count", humanize.Comma(int64(s.CurrentWordCount))},
			[]string{"Total Word Changes", humanize.Comma(int64(s.TotalWordChanges))},
			[]string{"Average Words per Edit", fmt.Sprintf("%.1f", s.AvgWordsPerEdit)},
		)
	}
	return r.table("Summary Statistics", []string{"Metric", "Value"}, rows)
}
