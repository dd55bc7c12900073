package widget

import (
	"sort"

	"github.com/mattn/go-runewidth"

	"github.com/saorsa-labs/saorsa/internal/buffer"
	"github.com/saorsa-labs/saorsa/internal/layout"
	"github.com/saorsa-labs/saorsa/internal/style"
)

// Alignment is the text alignment of a table column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Column describes one table column.
type Column struct {
	Header    string
	Width     int
	Alignment Alignment
}

// NewColumn creates a left-aligned Column.
func NewColumn(header string, width int) Column {
	return Column{Header: header, Width: width, Alignment: AlignLeft}
}

type sortState struct {
	col       int
	ascending bool
}

// Table is a scrollable, sortable grid of string rows under fixed-width
// columns, with Ctrl+1..9 column sort, Ctrl+0 clear sort, and
// Ctrl(+Shift)+Left/Right horizontal scroll / column resize.
type Table struct {
	Columns   []Column
	Resizable bool

	rows          [][]string
	selectedRow   int
	rowOffset     int
	colOffset     int
	sort          *sortState
	originalOrder []int

	headerStyle   buffer.Style
	rowStyle      buffer.Style
	selectedStyle buffer.Style
}

// NewTable creates a Table with the given column definitions.
func NewTable(columns []Column) *Table { return &Table{Columns: columns} }

// SetRows replaces all rows, resetting selection, scroll, and sort.
func (t *Table) SetRows(rows [][]string) {
	t.rows = rows
	t.selectedRow = 0
	t.rowOffset = 0
	t.sort = nil
	t.originalOrder = nil
}

// PushRow appends a single row.
func (t *Table) PushRow(row []string) { t.rows = append(t.rows, row) }

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.rows) }

// SelectedRow returns the selected row index.
func (t *Table) SelectedRow() int { return t.selectedRow }

// SelectedRowData returns the data for the selected row.
func (t *Table) SelectedRowData() ([]string, bool) {
	if t.selectedRow < 0 || t.selectedRow >= len(t.rows) {
		return nil, false
	}
	return t.rows[t.selectedRow], true
}

// SortByColumn sorts rows by the given column, toggling ascending/descending
// on repeated calls against the same column.
func (t *Table) SortByColumn(col int) {
	if col < 0 || col >= len(t.Columns) {
		return
	}
	if len(t.originalOrder) == 0 {
		t.originalOrder = make([]int, len(t.rows))
		for i := range t.rows {
			t.originalOrder[i] = i
		}
	}
	ascending := true
	if t.sort != nil && t.sort.col == col {
		ascending = !t.sort.ascending
	}
	t.sort = &sortState{col: col, ascending: ascending}

	sort.SliceStable(t.rows, func(i, j int) bool {
		var a, b string
		if col < len(t.rows[i]) {
			a = t.rows[i][col]
		}
		if col < len(t.rows[j]) {
			b = t.rows[j][col]
		}
		if ascending {
			return a < b
		}
		return a > b
	})
	t.selectedRow = 0
	t.rowOffset = 0
}

// ClearSort restores the original row order captured before the first sort.
func (t *Table) ClearSort() {
	if len(t.originalOrder) == 0 || t.sort == nil {
		t.sort = nil
		return
	}
	type indexed struct {
		orig int
		row  []string
	}
	items := make([]indexed, len(t.rows))
	for i, row := range t.rows {
		orig := i
		if i < len(t.originalOrder) {
			orig = t.originalOrder[i]
		}
		items[i] = indexed{orig: orig, row: row}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].orig < items[j].orig })
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = it.row
	}
	t.rows = rows
	t.sort = nil
	t.originalOrder = nil
	t.selectedRow = 0
	t.rowOffset = 0
}

func (t *Table) totalColumnsWidth() int {
	if len(t.Columns) == 0 {
		return 0
	}
	sum := 0
	for _, c := range t.Columns {
		sum += c.Width
	}
	return sum + len(t.Columns) - 1
}

func (t *Table) ensureSelectedVisible(visibleHeight int) {
	if visibleHeight == 0 {
		return
	}
	if t.selectedRow < t.rowOffset {
		t.rowOffset = t.selectedRow
	}
	if t.selectedRow >= t.rowOffset+visibleHeight {
		t.rowOffset = t.selectedRow - (visibleHeight - 1)
		if t.rowOffset < 0 {
			t.rowOffset = 0
		}
	}
}

func (t *Table) renderRow(row []string, y, x, availWidth int, st buffer.Style, buf *buffer.Buffer) {
	col := 0
	for ci, c := range t.Columns {
		if col >= availWidth {
			break
		}
		var text string
		if ci < len(row) {
			text = row[ci]
		}
		cellW := c.Width
		if col+cellW > availWidth {
			cellW = availWidth - col
		}
		drawRunLeftAligned(buf, x+col, y, text, cellW, st)
		col += c.Width
		if ci < len(t.Columns)-1 {
			col++
		}
	}
}

func drawRunLeftAligned(buf *buffer.Buffer, x, y int, text string, width int, st buffer.Style) {
	col := 0
	for _, r := range text {
		if col >= width {
			break
		}
		w := runewidth.RuneWidth(r)
		if col+w > width {
			break
		}
		buf.Set(x+col, y, buffer.Cell{Grapheme: string(r), Width: w, Style: st})
		col += w
	}
}

func (t *Table) Render(area layout.Rect, buf *buffer.Buffer) {
	if area.Width == 0 || area.Height == 0 {
		return
	}
	availWidth := area.Width
	totalHeight := area.Height

	if totalHeight > 0 {
		headers := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			h := c.Header
			if t.sort != nil && t.sort.col == i {
				if t.sort.ascending {
					h += "↑"
				} else {
					h += "↓"
				}
			}
			headers[i] = h
		}
		t.renderRow(headers, area.Y, area.X, availWidth, t.headerStyle, buf)
	}

	dataHeight := totalHeight - 1
	if dataHeight <= 0 {
		return
	}

	maxOffset := len(t.rows) - dataHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	scroll := t.rowOffset
	if scroll > maxOffset {
		scroll = maxOffset
	}
	visibleEnd := scroll + dataHeight
	if visibleEnd > len(t.rows) {
		visibleEnd = len(t.rows)
	}

	for rowIdx, dataIdx := 0, scroll; dataIdx < visibleEnd; rowIdx, dataIdx = rowIdx+1, dataIdx+1 {
		y := area.Y + 1 + rowIdx
		row := t.rows[dataIdx]
		isSelected := dataIdx == t.selectedRow
		st := t.rowStyle
		if isSelected {
			st = t.selectedStyle
			for col := 0; col < availWidth; col++ {
				buf.Set(area.X+col, y, buffer.Cell{Grapheme: " ", Width: 1, Style: st})
			}
		}
		t.renderRow(row, y, area.X, availWidth, st, buf)
	}
}

func (t *Table) HandleEvent(ev Event) EventResult {
	if ev.Kind != EventKey {
		return Ignored
	}
	const page = 20
	key := ev.Key
	switch key.Code {
	case KeyUp:
		if t.selectedRow > 0 {
			t.selectedRow--
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyDown:
		if len(t.rows) > 0 && t.selectedRow < len(t.rows)-1 {
			t.selectedRow++
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyLeft:
		hasCtrl := key.Modifiers.Has(ModCtrl)
		hasShift := key.Modifiers.Has(ModShift)
		switch {
		case hasCtrl && hasShift && t.Resizable:
			target := t.selectedRow
			if target > len(t.Columns)-1 {
				target = len(t.Columns) - 1
			}
			if target >= 0 {
				w := t.Columns[target].Width - 1
				if w < 3 {
					w = 3
				}
				t.Columns[target].Width = w
			}
		case hasCtrl:
			t.colOffset = 0
		default:
			if t.colOffset > 0 {
				t.colOffset--
			}
		}
		return Consumed
	case KeyRight:
		hasCtrl := key.Modifiers.Has(ModCtrl)
		hasShift := key.Modifiers.Has(ModShift)
		switch {
		case hasCtrl && hasShift && t.Resizable:
			target := t.selectedRow
			if target > len(t.Columns)-1 {
				target = len(t.Columns) - 1
			}
			if target >= 0 {
				w := t.Columns[target].Width + 1
				if w > 50 {
					w = 50
				}
				t.Columns[target].Width = w
			}
		case hasCtrl:
			t.colOffset = t.totalColumnsWidth()
		default:
			t.colOffset++
		}
		return Consumed
	case KeyPageUp:
		t.selectedRow -= page
		if t.selectedRow < 0 {
			t.selectedRow = 0
		}
		t.ensureSelectedVisible(page)
		return Consumed
	case KeyPageDown:
		if len(t.rows) > 0 {
			t.selectedRow += page
			if t.selectedRow > len(t.rows)-1 {
				t.selectedRow = len(t.rows) - 1
			}
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyHome:
		t.selectedRow = 0
		t.rowOffset = 0
		return Consumed
	case KeyEnd:
		if len(t.rows) > 0 {
			t.selectedRow = len(t.rows) - 1
			t.ensureSelectedVisible(page)
		}
		return Consumed
	case KeyRune:
		if !key.Modifiers.Has(ModCtrl) {
			return Ignored
		}
		if key.Rune == '0' {
			t.ClearSort()
			return Consumed
		}
		if key.Rune >= '1' && key.Rune <= '9' {
			col := int(key.Rune - '1')
			if col < len(t.Columns) {
				t.SortByColumn(col)
			}
			return Consumed
		}
	}
	return Ignored
}

func (t *Table) ApplyComputedStyle(cs style.ComputedStyle) {
	t.rowStyle = computedToCellStyle(cs)
	t.headerStyle = t.rowStyle
	t.headerStyle.Bold = true
	t.selectedStyle = t.rowStyle
	t.selectedStyle.Reverse = true
}

func (t *Table) OnMount()        {}
func (t *Table) OnUnmount()      {}
func (t *Table) Focusable() bool { return true }
