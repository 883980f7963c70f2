package probe

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format renders r as a Checkmk local check line:
//
//	<code> "<service>" <metrics|-> <message>[ <long output>]
//
// The returned line never contains a raw newline.
func Format(r *Result) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(r.Status.ExitCode()))
	sb.WriteString(` "`)
	sb.WriteString(oneLine(strings.ReplaceAll(r.Service, `"`, "'")))
	sb.WriteString(`" `)
	sb.WriteString(formatMetrics(r.Metrics))
	sb.WriteByte(' ')
	sb.WriteString(oneLine(r.Message))
	if len(r.LongOutput) > 0 {
		sb.WriteByte(' ')
		for _, line := range r.LongOutput {
			sb.WriteString(`\n`)
			sb.WriteString(oneLine(line))
		}
	}
	return sb.String()
}

// Write prints the formatted result followed by a newline.
func Write(w io.Writer, r *Result) error {
	_, err := fmt.Fprintln(w, Format(r))
	return err
}

func formatMetrics(metrics []Metric) string {
	if len(metrics) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(metrics))
	for _, m := range metrics {
		parts = append(parts, m.Name+"="+strconv.FormatFloat(m.Value, 'f', -1, 64))
	}
	return strings.Join(parts, "|")
}

// Checkmk reads one line per service; embedded newlines use the literal \n escape.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", `\n`)
}
