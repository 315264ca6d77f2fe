package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/letterboard/internal/glyph"
	runewidth "github.com/mattn/go-runewidth"
)

const (
	gridMargin   = 2
	minCellWidth = 5
	maxCellWidth = 12
)

// gridLayout places n cells on screen. Coordinates are absolute terminal
// cells, matching what mouse events report.
type gridLayout struct {
	top, left  int
	cols, rows int
	cellW      int
	cellH      int
	n          int
	bordered   bool
}

// newGridLayout lays out glyphs in mode m below a header of the given height.
// Cells are bordered unless that would not fit in the space left over.
func newGridLayout(m glyph.Mode, glyphs []glyph.Glyph, width, height, top, reserved int, compact bool) gridLayout {
	cols := glyph.Columns(m, width)
	n := len(glyphs)
	cols = max(1, min(cols, n))
	rows := (n + cols - 1) / cols

	widest := 0
	for _, g := range glyphs {
		widest = max(widest, runewidth.StringWidth(g.Symbol))
	}

	l := gridLayout{
		top:      top,
		left:     gridMargin,
		cols:     cols,
		rows:     rows,
		cellW:    cellWidth(width, cols, widest),
		cellH:    3,
		n:        n,
		bordered: true,
	}
	if compact || (height > 0 && top+rows*3+reserved > height) {
		l.cellH = 1
		l.bordered = false
	}

	// Still too tall: trade rows for columns while the cells fit across.
	if avail := height - top - reserved; height > 0 && width > 0 && l.rows > avail {
		fit := min(n, max(1, (width-gridMargin*2)/max(widest+4, minCellWidth)))
		for l.rows > avail && l.cols < fit {
			l.cols++
			l.rows = (n + l.cols - 1) / l.cols
		}
		l.cellW = cellWidth(width, l.cols, widest)
	}
	return l
}

func cellWidth(width, cols, widest int) int {
	w := maxCellWidth
	if width > 0 {
		w = (width - gridMargin*2) / cols
	}
	return max(min(w, maxCellWidth), minCellWidth, widest+4)
}

// index returns the cell under the terminal position x, y or -1.
func (l gridLayout) index(x, y int) int {
	x -= l.left
	y -= l.top
	if x < 0 || y < 0 || l.cellW <= 0 || l.cellH <= 0 {
		return -1
	}
	col, row := x/l.cellW, y/l.cellH
	if col >= l.cols || row >= l.rows {
		return -1
	}
	i := row*l.cols + col
	if i >= l.n {
		return -1
	}
	return i
}

// move returns the cursor position after moving dx columns and dy rows,
// clamped to the grid.
func (l gridLayout) move(i, dx, dy int) int {
	if l.n == 0 {
		return 0
	}
	row, col := i/l.cols, i%l.cols
	col = max(0, min(col+dx, l.cols-1))
	row = max(0, min(row+dy, l.rows-1))
	j := row*l.cols + col
	if j >= l.n {
		j = l.n - 1
	}
	return j
}

func (l gridLayout) height() int {
	return l.rows * l.cellH
}

type cellState struct {
	active      bool
	celebrating bool
	cursor      bool
}

// render draws the glyphs. state reports how each cell should look.
func (l gridLayout) render(glyphs []glyph.Glyph, state func(i int, g glyph.Glyph) cellState) string {
	rows := make([]string, 0, l.rows)
	for r := 0; r < l.rows; r++ {
		cells := make([]string, 0, l.cols)
		for c := 0; c < l.cols; c++ {
			i := r*l.cols + c
			if i >= len(glyphs) {
				break
			}
			g := glyphs[i]
			st := state(i, g)
			style := cellStyle(glyph.Color(i), l.cellW, l.bordered, st.active, st.celebrating, st.cursor)
			cells = append(cells, style.Render(g.Symbol))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return indent(strings.Join(rows, "\n"), l.left)
}
