package load

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

const reportTimeLayout = "2006-01-02 15:04:05"

var reportRule = strings.Repeat("=", 50)

// countNoun renders n with noun pluralized to match, e.g. "1 pet", "3 pets".
func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflection.Plural(noun))
}

func writeReportHeader(b *strings.Builder, title string, run models.RunInfo) {
	fmt.Fprintf(b, "KennelOS Analytics - %s\n", title)
	b.WriteString(reportRule + "\n")
	fmt.Fprintf(b, "Run ID: %s\n", run.ID)
	fmt.Fprintf(b, "Generated: %s\n\n", run.StartedAt.Format(reportTimeLayout))
}

// WriteSummaryReport writes the human-readable run summary: record counts
// and headline figures per dataset, followed by validation totals.
func WriteSummaryReport(out io.Writer, run models.RunInfo, res *transform.Result) error {
	var b strings.Builder
	writeReportHeader(&b, "ETL Summary Report", run)

	for _, table := range Tables(res) {
		title := strings.ToUpper(table.Name)
		b.WriteString(title + "\n")
		b.WriteString(strings.Repeat("-", len(title)) + "\n")

		if table.Len() == 0 {
			b.WriteString("No data available\n\n")
			continue
		}
		fmt.Fprintf(&b, "Total Records: %d\n", table.Len())
		fmt.Fprintf(&b, "Columns: %s\n", strings.Join(table.Columns, ", "))

		switch table.Name {
		case models.TablePetActivities:
			writeActivityFigures(&b, res.Activities)
		case models.TableEnvironment:
			writeEnvironmentFigures(&b, res.Environment)
		case models.TableStaffLogs:
			writeStaffFigures(&b, res.StaffLogs)
		case models.TableDailySummary:
			writeSummaryFigures(&b, res.DailySummary)
		}
		b.WriteString("\n")
	}

	b.WriteString("VALIDATION\n----------\n")
	total := res.Stats.Total()
	fmt.Fprintf(&b, "Input: %s\n", countNoun(total.Input, "record"))
	fmt.Fprintf(&b, "Rejected: %s (%.1f%%)\n", countNoun(total.Rejected, "record"), res.FailureRate()*100)

	_, err := io.WriteString(out, b.String())
	return err
}

func writeActivityFigures(b *strings.Builder, activities []models.ActivityRecord) {
	pets := make(map[string]bool)
	var types []string
	seenType := make(map[string]bool)
	minutes := 0
	for _, a := range activities {
		pets[a.PetID] = true
		if !seenType[a.ActivityType] {
			seenType[a.ActivityType] = true
			types = append(types, a.ActivityType)
		}
		minutes += a.DurationMinutes
	}
	fmt.Fprintf(b, "Unique Pets: %d\n", len(pets))
	fmt.Fprintf(b, "Activity Types: %s\n", strings.Join(types, ", "))
	fmt.Fprintf(b, "Total Activity Time: %s\n", countNoun(minutes, "minute"))
}

func writeEnvironmentFigures(b *strings.Builder, readings []models.EnvironmentReading) {
	first := readings[0]
	minT, maxT := first.TemperatureF, first.TemperatureF
	minH, maxH := first.HumidityPercent, first.HumidityPercent
	minN, maxN := first.NoiseLevelDB, first.NoiseLevelDB
	for _, e := range readings[1:] {
		minT, maxT = min(minT, e.TemperatureF), max(maxT, e.TemperatureF)
		minH, maxH = min(minH, e.HumidityPercent), max(maxH, e.HumidityPercent)
		minN, maxN = min(minN, e.NoiseLevelDB), max(maxN, e.NoiseLevelDB)
	}
	fmt.Fprintf(b, "Temperature Range: %.1f°F - %.1f°F\n", minT, maxT)
	fmt.Fprintf(b, "Humidity Range: %.1f%% - %.1f%%\n", minH, maxH)
	fmt.Fprintf(b, "Noise Range: %.1fdB - %.1fdB\n", minN, maxN)
}

func writeStaffFigures(b *strings.Builder, shifts []models.StaffLog) {
	staff := make(map[string]bool)
	tasks := 0
	perHour := 0.0
	for _, s := range shifts {
		staff[s.StaffID] = true
		tasks += s.TasksCompleted
		perHour += s.TasksPerHour
	}
	fmt.Fprintf(b, "Total Staff: %d\n", len(staff))
	fmt.Fprintf(b, "Total Tasks Completed: %d\n", tasks)
	fmt.Fprintf(b, "Average Tasks per Hour: %.2f\n", perHour/float64(len(shifts)))
}

func writeSummaryFigures(b *strings.Builder, summaries []models.DailySummary) {
	activities, pets := 0, 0
	for _, d := range summaries {
		activities += d.TotalActivities
		pets += d.UniquePets
	}
	fmt.Fprintf(b, "Date Range: %s to %s\n", summaries[0].Date, summaries[len(summaries)-1].Date)
	fmt.Fprintf(b, "Total Activities Across All Days: %d\n", activities)
	fmt.Fprintf(b, "Total Unique Pets: %d\n", pets)
}

// WriteQualityReport writes per-dataset data quality figures: row and
// column counts, empty values per column, duplicate rows and the rejected
// input rows grouped by reason code.
func WriteQualityReport(out io.Writer, run models.RunInfo, res *transform.Result) error {
	var b strings.Builder
	writeReportHeader(&b, "Data Quality Report", run)

	for _, table := range Tables(res) {
		title := strings.ToUpper(table.Name) + " QUALITY ASSESSMENT"
		b.WriteString(title + "\n")
		b.WriteString(strings.Repeat("-", len(title)) + "\n")

		if table.Len() == 0 {
			b.WriteString("Dataset is empty - no quality assessment available\n")
		} else {
			fmt.Fprintf(&b, "Total Records: %d\n", table.Len())
			fmt.Fprintf(&b, "Total Columns: %d\n", len(table.Columns))
			writeMissingValues(&b, table)
			fmt.Fprintf(&b, "\nDuplicate Records: %d\n", duplicateRows(table))
		}

		if table.Kind != "" {
			writeRejections(&b, res.FailuresOf(table.Kind))
		}
		b.WriteString("\n" + reportRule + "\n\n")
	}

	_, err := io.WriteString(out, b.String())
	return err
}

func writeMissingValues(b *strings.Builder, table Table) {
	counts := make([]int, len(table.Columns))
	anyMissing := false
	for _, row := range table.Rows {
		for i, v := range row {
			if isNull(v) {
				counts[i]++
				anyMissing = true
			}
		}
	}
	if !anyMissing {
		b.WriteString("\nNo missing values detected\n")
		return
	}
	b.WriteString("\nMissing Values:\n")
	for i, n := range counts {
		if n == 0 {
			continue
		}
		fmt.Fprintf(b, "  %s: %d (%.1f%%)\n", table.Columns[i], n, float64(n)/float64(table.Len())*100)
	}
}

// duplicateRows counts rows identical, cell for cell, to an earlier row.
func duplicateRows(table Table) int {
	seen := make(map[string]bool, table.Len())
	dups := 0
	cells := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			cells[i] = FormatCell(v)
		}
		key := strings.Join(cells, "\x1f")
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
	}
	return dups
}

func writeRejections(b *strings.Builder, failures []models.ValidationFailure) {
	fmt.Fprintf(b, "\nRejected Input Rows: %d\n", len(failures))
	if len(failures) == 0 {
		return
	}
	byReason := make(map[models.ReasonCode]int)
	for _, f := range failures {
		for _, r := range f.Reasons {
			byReason[r]++
		}
	}
	reasons := make([]string, 0, len(byReason))
	for r := range byReason {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(b, "  %s: %s\n", r, countNoun(byReason[models.ReasonCode(r)], "row"))
	}
}
