package view

import "strings"

type ListRenderInput struct {
	Rows   []*Row
	Start  int
	End    int
	Cursor int

	RenderRowLine func(row *Row, visiblePos int, active bool) string
}

// RenderListBody renders rows[Start:End]. Unbound rows are skipped so a
// half-released page never shows stale characters.
func RenderListBody(in ListRenderInput) string {
	if len(in.Rows) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	if in.End > len(in.Rows) {
		in.End = len(in.Rows)
	}
	var b strings.Builder
	for i := in.Start; i < in.End; i++ {
		row := in.Rows[i]
		if row == nil || !row.Bound() {
			continue
		}
		b.WriteString(in.RenderRowLine(row, i, i == in.Cursor))
		b.WriteString("\n")
	}
	return b.String()
}
