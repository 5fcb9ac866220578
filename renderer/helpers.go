package renderer

import (
	"bytes"
	"io"
	"math"
	"strings"

	"github.com/etnz/allocation"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// cell escapes s for a markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// maxBar is the length of the longest deviation bar.
const maxBar = 20

// bar draws a deviation as a bar of one block per percentage point.
func bar(deviation allocation.Value) string {
	f, ok := deviation.Float64()
	if !ok {
		return ""
	}
	n := int(math.Round(math.Abs(f)))
	switch {
	case n > maxBar:
		return strings.Repeat("█", maxBar) + "…"
	case n == 0 && f != 0:
		return "▏"
	}
	return strings.Repeat("█", n)
}
