// Package load writes the clean tables and reports of a pipeline run to
// flat files and to the relational store.
package load

import (
	"strconv"
	"time"

	"github.com/kennelos/kennel-etl/pkg/models"
	"github.com/kennelos/kennel-etl/pkg/transform"
)

// Table is one output table in persisted column order.
type Table struct {
	Name    string
	Kind    models.EntityKind // empty for daily_summary
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Tables returns the four output tables of res.
func Tables(res *transform.Result) []Table {
	activities := Table{Name: models.TablePetActivities, Kind: models.KindActivity, Columns: models.ActivityColumns}
	for _, a := range res.Activities {
		activities.Rows = append(activities.Rows, a.Values())
	}
	environment := Table{Name: models.TableEnvironment, Kind: models.KindEnvironment, Columns: models.EnvironmentColumns}
	for _, e := range res.Environment {
		environment.Rows = append(environment.Rows, e.Values())
	}
	staff := Table{Name: models.TableStaffLogs, Kind: models.KindStaff, Columns: models.StaffColumns}
	for _, s := range res.StaffLogs {
		staff.Rows = append(staff.Rows, s.Values())
	}
	summary := Table{Name: models.TableDailySummary, Columns: models.DailySummaryColumns}
	for _, d := range res.DailySummary {
		summary.Rows = append(summary.Rows, d.Values())
	}
	return []Table{activities, environment, staff, summary}
}

// Timestamp layouts for flat-file cells. Wall-clock values carry no offset.
const (
	cellTimeLayout       = "2006-01-02 15:04:05.999999999"
	cellTimeOffsetLayout = "2006-01-02 15:04:05.999999999Z07:00"
)

// FormatCell renders a column value as flat-file text. Nulls are empty.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case time.Time:
		if x.Location() == time.UTC {
			return x.Format(cellTimeLayout)
		}
		return x.Format(cellTimeOffsetLayout)
	case models.Date:
		return x.String()
	case models.ComfortLevel:
		return string(x)
	case models.ShiftType:
		return string(x)
	default:
		return ""
	}
}

// isNull reports whether a cell carries no value: a nil average or an
// empty optional text field.
func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *float64:
		return x == nil
	case string:
		return x == ""
	default:
		return false
	}
}
