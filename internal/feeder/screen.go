package feeder

import (
	"sync"
	"time"
	"unicode/utf8"
)

// Writer identifies a task that draws on the screen.
type Writer int

const (
	// WriterClock is the display task: date on row 0, time on row 1.
	WriterClock Writer = iota
	// WriterMeasure is the measurement task: weight on row 0 while it holds the window.
	WriterMeasure
)

func (w Writer) String() string {
	if w == WriterMeasure {
		return "measure"
	}
	return "clock"
}

// OwnershipWindow reserves row 0 for the measurement task during [From, Until).
// Both bounds are monotonic readings.
type OwnershipWindow struct {
	From  time.Duration
	Until time.Duration
	Held  bool
}

// Active reports whether the window covers now.
func (w OwnershipWindow) Active(now time.Duration) bool {
	return w.Held && now >= w.From && now < w.Until
}

// Screen arbitrates a two-row display between writers.
//
// Row 0 belongs to WriterMeasure while the ownership window is active and to
// WriterClock otherwise. Row 1 always belongs to WriterClock. The ownership check
// and the write happen under one lock, so a row is never drawn by two writers for
// the same instant.
type Screen struct {
	mu      sync.Mutex
	display Display
	width   int
	window  OwnershipWindow
	powered bool
}

// NewScreen wraps a display whose rows are width characters wide.
func NewScreen(display Display, width int) *Screen {
	return &Screen{display: display, width: width, powered: true}
}

// Reserve gives row 0 to the measurement task for [from, until).
func (s *Screen) Reserve(from, until time.Duration) {
	s.mu.Lock()
	s.window = OwnershipWindow{From: from, Until: until, Held: true}
	s.mu.Unlock()
}

// Release empties the ownership window.
func (s *Screen) Release() {
	s.mu.Lock()
	s.window = OwnershipWindow{}
	s.mu.Unlock()
}

// Window returns the current ownership window.
func (s *Screen) Window() OwnershipWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Owner returns the writer allowed to draw row at monotonic time now.
func (s *Screen) Owner(row int, now time.Duration) Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner(row, now)
}

func (s *Screen) owner(row int, now time.Duration) Writer {
	if row == 0 && s.window.Active(now) {
		return WriterMeasure
	}
	return WriterClock
}

// WriteLine draws text on row if w owns it at now. It reports whether it drew.
// Text is padded or cut to the row width so stale characters never linger.
func (s *Screen) WriteLine(w Writer, row int, text string, now time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.powered || s.owner(row, now) != w {
		return false
	}
	s.display.MoveCursor(0, row)
	s.display.Write(fit(text, s.width))
	return true
}

// Clear blanks both rows.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.powered {
		return
	}
	s.display.Clear()
}

// PowerOff turns the display off. Later writes are dropped.
func (s *Screen) PowerOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.powered {
		return
	}
	s.powered = false
	s.display.Clear()
	s.display.PowerOff()
}

func fit(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n == width {
		return text
	}
	if n > width {
		runes := []rune(text)
		return string(runes[:width])
	}
	buf := make([]byte, 0, len(text)+width-n)
	buf = append(buf, text...)
	for i := n; i < width; i++ {
		buf = append(buf, ' ')
	}
	return string(buf)
}
