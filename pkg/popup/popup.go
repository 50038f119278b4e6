// Package popup describes browser popup windows opened by widgets.
package popup

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Screen is the size of the user's screen in CSS pixels.
type Screen struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Features is the size of a popup window.
type Features struct {
	Height float64
	Width  float64
}

// ForScreen sizes a popup at two thirds of the screen height and half of its
// width.
func ForScreen(screen Screen) Features {
	return Features{
		Height: screen.Height * 2 / 3,
		Width:  screen.Width / 2,
	}
}

// String encodes the window feature string passed to window.open.
func (f Features) String() string {
	return "popup,height=" + formatNumber(f.Height) + ",width=" + formatNumber(f.Width)
}

// formatNumber prints the shortest decimal that round trips, matching how
// browsers stringify numbers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Opener opens a new browser window.
type Opener interface {
	Open(url, target, features string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url, target, features string) error

// Open implements Opener.
func (fn OpenerFunc) Open(url, target, features string) error {
	return fn(url, target, features)
}

// Request is a recorded popup request.
type Request struct {
	URL      string `json:"url"`
	Target   string `json:"target"`
	Features string `json:"features"`
}

// WriterOpener prints popup requests instead of opening a window. Terminal
// hosts use it to hand the link to the user.
type WriterOpener struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOpener returns an opener writing to w.
func NewWriterOpener(w io.Writer) *WriterOpener {
	return &WriterOpener{w: w}
}

// Open implements Opener.
func (o *WriterOpener) Open(url, target, features string) error {
	if o == nil || o.w == nil {
		return fmt.Errorf("popup: writer opener has no writer")
	}
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("popup: url is required")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := fmt.Fprintf(o.w, "open %s (target=%q, features=%q)\n", url, target, features)
	return err
}
