package lcd

import (
	"strings"
	"sync"
)

// Fake is an in-memory character display.
type Fake struct {
	mu     sync.Mutex
	cols   int
	rows   [][]rune
	col    int
	row    int
	clears int
	off    bool
	writes []string
}

// NewFake creates a blank cols x rows display.
func NewFake(cols, rows int) *Fake {
	f := &Fake{cols: cols, rows: make([][]rune, rows)}
	f.blank()
	return f
}

func (f *Fake) blank() {
	for i := range f.rows {
		f.rows[i] = []rune(strings.Repeat(" ", f.cols))
	}
	f.col, f.row = 0, 0
}

// MoveCursor positions the cursor.
func (f *Fake) MoveCursor(col, row int) {
	f.mu.Lock()
	f.col, f.row = col, row
	f.mu.Unlock()
}

// Write stores text at the cursor, dropping characters past the last column.
func (f *Fake) Write(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, text)
	if f.row < 0 || f.row >= len(f.rows) {
		return
	}
	for _, r := range text {
		if f.col >= 0 && f.col < f.cols {
			f.rows[f.row][f.col] = r
		}
		f.col++
	}
}

// Clear blanks every row.
func (f *Fake) Clear() {
	f.mu.Lock()
	f.clears++
	f.blank()
	f.mu.Unlock()
}

// PowerOff marks the display off.
func (f *Fake) PowerOff() {
	f.mu.Lock()
	f.off = true
	f.mu.Unlock()
}

// Line returns the contents of row with trailing blanks removed.
func (f *Fake) Line(row int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row < 0 || row >= len(f.rows) {
		return ""
	}
	return strings.TrimRight(string(f.rows[row]), " ")
}

// Writes returns every string written so far.
func (f *Fake) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// Clears returns how many times the display was cleared.
func (f *Fake) Clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}

// Off reports whether PowerOff was called.
func (f *Fake) Off() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.off
}
