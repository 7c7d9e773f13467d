package render

import (
	"bytes"
	"delivery-map-client/internal/services"
	"fmt"
	"text/tabwriter"
)

// ScheduleTable lays out a schedule as aligned text columns.
func ScheduleTable(s services.Schedule) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Start %s, departure %s\n\n", s.Start, s.Departure)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLOCATION\tARRIVAL\tWINDOW\t")
	for _, r := range s.Rows {
		window := "-"
		if r.HasWindow {
			window = r.WindowEarliest + "-" + r.WindowLatest
		}
		arrival := r.Arrival
		if r.Late {
			arrival += " (late)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", r.Order, r.Location, arrival, window)
	}
	_ = tw.Flush()

	fmt.Fprintf(&buf, "\nTotal time: %s\n", s.Total)
	return buf.String()
}
