package cif

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

//needsQuotes is true when a value cannot be written as a bare token.
func needsQuotes(v string) bool {
	if v == "" {
		return true
	}
	if strings.ContainsAny(v, " \t'\"") {
		return true
	}
	switch v[0] {
	case '_', '#', '$', '[', ']', ';':
		return true
	}
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "data_") || lower == "loop_" || lower == "stop_"
}

func formatValue(v string) string {
	if !needsQuotes(v) {
		return v
	}
	if !strings.Contains(v, "'") {
		return "'" + v + "'"
	}
	return "\"" + v + "\""
}

//Write serializes the document. The style has no blank lines: blocks and
//loops are separated by single '#' comment lines, the way Refmac
//intermediate files are written.
func Write(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	for _, b := range doc.Blocks {
		fmt.Fprintf(bw, "data_%s\n#\n", b.Name)
		//scalar items first, then loops, mirroring assembly order
		for _, k := range b.itemOrder() {
			fmt.Fprintf(bw, "%s %s\n", k, formatValue(b.Items[k]))
		}
		if len(b.Items) > 0 {
			fmt.Fprintln(bw, "#")
		}
		for _, l := range b.Loops {
			fmt.Fprintln(bw, "loop_")
			for _, t := range l.Tags {
				fmt.Fprintln(bw, t)
			}
			widths := columnWidths(l)
			for _, row := range l.Rows {
				for i, v := range row {
					if i > 0 {
						bw.WriteByte(' ')
					}
					fmt.Fprintf(bw, "%-*s", widths[i], formatValue(v))
				}
				bw.WriteByte('\n')
			}
			fmt.Fprintln(bw, "#")
		}
	}
	return bw.Flush()
}

//itemOrder returns the scalar item tags sorted lexically, so output is
//reproducible across runs.
func (b *Block) itemOrder() []string {
	keys := make([]string, 0, len(b.Items))
	for k := range b.Items {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ { //insertion sort, the maps are tiny
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func columnWidths(l *Loop) []int {
	widths := make([]int, len(l.Tags))
	for _, row := range l.Rows {
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			if w := len(formatValue(v)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	//the last column doesn't need padding
	if len(widths) > 0 {
		widths[len(widths)-1] = 0
	}
	return widths
}
