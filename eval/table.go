package eval

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

const (
	columnMSE = "Mean Squared Error"
	columnR2  = "R^2 Score"
	separator = "  "
)

// Render writes one row per model with the model name as row label, then
// the mean squared error and R² columns.
func Render(w io.Writer, results *Results) error {
	headers := []string{columnMSE, columnR2}
	var items []Result
	if results != nil {
		items = results.items
	}

	labelWidth := 0
	cells := make([][]string, len(items))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = displayWidth(h)
	}
	for i, item := range items {
		if n := displayWidth(item.Name); n > labelWidth {
			labelWidth = n
		}
		cells[i] = []string{formatFloat(item.MeanSquaredError), formatFloat(item.R2Score)}
		for j, cell := range cells[i] {
			if n := len(cell); n > widths[j] {
				widths[j] = n
			}
		}
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Repeat(" ", labelWidth))
	for i, h := range headers {
		bw.WriteString(separator)
		bw.WriteString(padLeft(h, widths[i]))
	}
	bw.WriteString("\n")
	for i, item := range items {
		bw.WriteString(padRight(item.Name, labelWidth))
		for j, cell := range cells[i] {
			bw.WriteString(separator)
			bw.WriteString(padLeft(cell, widths[j]))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func RenderString(results *Results) string {
	var sb strings.Builder
	_ = Render(&sb, results)
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// displayWidth counts terminal cells; East Asian wide runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func padLeft(s string, w int) string {
	if pad := w - displayWidth(s); pad > 0 {
		return strings.Repeat(" ", pad) + s
	}
	return s
}

func padRight(s string, w int) string {
	if pad := w - displayWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
