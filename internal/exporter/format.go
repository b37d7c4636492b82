package exporter

import (
	"strconv"
	"time"
)

// formatCell renders a typed cell for CSV output. Numbers use the
// shortest representation that round-trips through ParseFloat, so an
// exported value re-imports to the identical float64. Dates use ISO
// format, which the parser recognizes as a date.
func formatCell(cell any) string {
	switch c := cell.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case time.Time:
		return c.Format("2006-01-02")
	case bool:
		if c {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
