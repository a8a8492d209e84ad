package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hatlonely/hms/audit"
	"github.com/hatlonely/hms/catalog"
	"github.com/hatlonely/hms/database"
	"github.com/pkg/errors"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.DateTime)
	default:
		return fmt.Sprint(val)
	}
}

// printResultSet 没有列的结果只输出影响行数
func printResultSet(w io.Writer, rs *database.ResultSet) error {
	if len(rs.Columns) == 0 {
		_, err := fmt.Fprintf(w, "%d row(s) affected\n", rs.RowsAffected)
		return err
	}

	tw := newTabWriter(w)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
	for _, row := range rs.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "flush output failed")
	}

	if rs.Truncated {
		_, err := fmt.Fprintf(w, "(result truncated to %d rows)\n", len(rs.Rows))
		return err
	}
	return nil
}

// printRecord 按建表列顺序逐行输出一条记录
func printRecord(w io.Writer, schema *catalog.EntitySchema, row map[string]any) error {
	columns := []string{schema.PrimaryKey}
	columns = append(columns, schema.FieldNames()...)
	for _, f := range schema.Generated {
		columns = append(columns, f.Name)
	}

	tw := newTabWriter(w)
	for _, col := range columns {
		fmt.Fprintf(tw, "%s\t%s\n", col, formatValue(row[col]))
	}
	return errors.Wrap(tw.Flush(), "flush output failed")
}

func printAudit(w io.Writer, entries []*audit.Entry) error {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, "ID\tTIME\tOPERATOR\tMODE\tROWS\tDURATION\tSQL\tERROR")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%dms\t%s\t%s\n",
			e.ID, e.Time.Local().Format(time.DateTime), e.Operator, e.Mode, e.Rows, e.DurationMs, oneLine(e.SQL), e.Error)
	}
	return errors.Wrap(tw.Flush(), "flush output failed")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
