package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-sql/civil"

	"github.com/kennelos/kennel-etl/pkg/models"
)

// sqliteTimeLayout keeps the offset so wall-clock values round-trip unchanged.
const sqliteTimeLayout = time.RFC3339Nano

// Dialect captures the SQL differences between the supported stores.
type Dialect struct {
	Name string

	placeholder func(n int) string
	quote       func(ident string) string
	encodeTime  func(t time.Time) any
	encodeDate  func(d models.Date) any
	// shiftDate is the expression yielding the calendar date of shift_start.
	shiftDate string
}

// PostgresDialect returns the dialect for PostgreSQL.
func PostgresDialect() Dialect {
	return Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		quote:       doubleQuote,
		encodeTime:  func(t time.Time) any { return t },
		encodeDate:  func(d models.Date) any { return d.Time() },
		shiftDate:   "shift_start::date",
	}
}

// SQLiteDialect returns the dialect for SQLite. Timestamps and dates are text.
func SQLiteDialect() Dialect {
	return Dialect{
		Name:        "sqlite",
		placeholder: func(int) string { return "?" },
		quote:       doubleQuote,
		encodeTime:  func(t time.Time) any { return t.Format(sqliteTimeLayout) },
		encodeDate:  func(d models.Date) any { return d.String() },
		shiftDate:   "substr(shift_start, 1, 10)",
	}
}

// SQLServerDialect returns the dialect for Microsoft SQL Server.
// Civil types keep timestamps in wall-clock form for DATETIME2 columns.
func SQLServerDialect() Dialect {
	return Dialect{
		Name:        "sqlserver",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		quote:       func(ident string) string { return "[" + ident + "]" },
		encodeTime:  func(t time.Time) any { return civil.DateTimeOf(t) },
		encodeDate: func(d models.Date) any {
			return civil.Date{Year: d.Year, Month: d.Month, Day: d.Day}
		},
		shiftDate: "CAST([shift_start] AS DATE)",
	}
}

// DialectFor returns the dialect registered under driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return PostgresDialect(), nil
	case "sqlite":
		return SQLiteDialect(), nil
	case "sqlserver":
		return SQLServerDialect(), nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for driver %q", driver)
	}
}

func doubleQuote(ident string) string {
	return `"` + ident + `"`
}

// encode converts a model value into a driver argument.
func (d Dialect) encode(v any) any {
	switch x := v.(type) {
	case time.Time:
		return d.encodeTime(x)
	case models.Date:
		return d.encodeDate(x)
	case models.ComfortLevel:
		return string(x)
	case models.ShiftType:
		return string(x)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}

func (d Dialect) encodeAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = d.encode(v)
	}
	return out
}

func (d Dialect) columnList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.quote(c)
	}
	return strings.Join(quoted, ", ")
}

func (d Dialect) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// insertSQL builds a single-row INSERT for table.
func (d Dialect) insertSQL(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, d.columnList(columns), d.placeholders(len(columns)))
}

// upsertSummarySQL builds the statement that replaces the daily_summary row
// for a date, inserting it when absent.
func (d Dialect) upsertSummarySQL() string {
	cols := models.DailySummaryColumns
	key := d.quote(cols[0])

	if d.Name == "sqlserver" {
		source := make([]string, len(cols))
		updates := make([]string, 0, len(cols)-1)
		values := make([]string, len(cols))
		for i, c := range cols {
			q := d.quote(c)
			source[i] = fmt.Sprintf("CAST(%s AS %s) AS %s", d.placeholder(i+1), sqlServerSummaryTypes[c], q)
			values[i] = "source." + q
			if i > 0 {
				updates = append(updates, fmt.Sprintf("%s = source.%s", q, q))
			}
		}
		return fmt.Sprintf(`MERGE %s WITH (HOLDLOCK) AS target
USING (SELECT %s) AS source
ON target.%s = source.%s
WHEN MATCHED THEN UPDATE SET %s
WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);`,
			models.TableDailySummary,
			strings.Join(source, ", "),
			key, key,
			strings.Join(updates, ", "),
			d.columnList(cols), strings.Join(values, ", "))
	}

	updates := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		q := d.quote(c)
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", q, q))
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s",
		d.insertSQL(models.TableDailySummary, cols), key, strings.Join(updates, ", "))
}

var sqlServerSummaryTypes = map[string]string{
	"date":                   "DATE",
	"total_activities":       "INT",
	"total_activity_minutes": "INT",
	"unique_pets":            "INT",
	"avg_temperature":        "FLOAT",
	"avg_humidity":           "FLOAT",
	"avg_noise":              "FLOAT",
	"staff_shifts":           "INT",
	"total_tasks":            "INT",
}

// selectSQL builds a SELECT of columns from table filtered by the given
// conditions (already rendered with placeholders) and ordered by orderBy.
func (d Dialect) selectSQL(table string, columns, conditions []string, orderBy ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", d.columnList(columns), table)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	if len(orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(d.columnList(orderBy))
	}
	return b.String()
}

// listQuery is a rendered SELECT plus its arguments.
type listQuery struct {
	sql  string
	args []any
}

func (d Dialect) activitiesByDate(date models.Date) listQuery {
	return listQuery{
		sql: d.selectSQL(models.TablePetActivities, models.ActivityColumns,
			[]string{d.quote("date") + " = " + d.placeholder(1)}, "timestamp", "id"),
		args: []any{d.encodeDate(date)},
	}
}

func (d Dialect) environmentByDate(date models.Date) listQuery {
	return listQuery{
		sql: d.selectSQL(models.TableEnvironment, models.EnvironmentColumns,
			[]string{d.quote("date") + " = " + d.placeholder(1)}, "timestamp", "id"),
		args: []any{d.encodeDate(date)},
	}
}

func (d Dialect) staffLogsByDate(date models.Date) listQuery {
	return listQuery{
		sql: d.selectSQL(models.TableStaffLogs, models.StaffColumns,
			[]string{d.shiftDate + " = " + d.placeholder(1)}, "shift_start", "id"),
		args: []any{d.encodeDate(date)},
	}
}

func (d Dialect) dailySummaries(from, to *models.Date) listQuery {
	conditions, args := d.dateBounds(d.quote("date"), from, to)
	return listQuery{
		sql:  d.selectSQL(models.TableDailySummary, models.DailySummaryColumns, conditions, "date"),
		args: args,
	}
}

// dateBounds renders inclusive bounds on the date expression expr.
// Nil bounds are open.
func (d Dialect) dateBounds(expr string, from, to *models.Date) ([]string, []any) {
	var conditions []string
	var args []any
	argIdx := 1

	if from != nil {
		conditions = append(conditions, fmt.Sprintf("%s >= %s", expr, d.placeholder(argIdx)))
		args = append(args, d.encodeDate(*from))
		argIdx++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("%s <= %s", expr, d.placeholder(argIdx)))
		args = append(args, d.encodeDate(*to))
	}
	return conditions, args
}

func (d Dialect) activitiesBetween(from, to models.Date) listQuery {
	conditions, args := d.dateBounds(d.quote("date"), &from, &to)
	return listQuery{
		sql:  d.selectSQL(models.TablePetActivities, models.ActivityColumns, conditions, "timestamp", "id"),
		args: args,
	}
}

func (d Dialect) environmentBetween(from, to models.Date) listQuery {
	conditions, args := d.dateBounds(d.quote("date"), &from, &to)
	return listQuery{
		sql:  d.selectSQL(models.TableEnvironment, models.EnvironmentColumns, conditions, "timestamp", "id"),
		args: args,
	}
}

func (d Dialect) staffLogsBetween(from, to models.Date) listQuery {
	conditions, args := d.dateBounds(d.shiftDate, &from, &to)
	return listQuery{
		sql:  d.selectSQL(models.TableStaffLogs, models.StaffColumns, conditions, "shift_start", "id"),
		args: args,
	}
}
