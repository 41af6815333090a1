package output

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// UploadProgress shows a per-file progress bar. It is silent when the
// output is not a terminal.
type UploadProgress struct {
	bar *progressbar.ProgressBar
}

// NewUploadProgress creates a progress display for total files written to w.
func NewUploadProgress(total int, w io.Writer) *UploadProgress {
	if total <= 1 || !isTerminal(w) {
		return &UploadProgress{}
	}
	bar := progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("Encrypting files..."),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	_ = bar.RenderBlank()
	return &UploadProgress{bar: bar}
}

// Enabled reports whether a bar is drawn.
func (p *UploadProgress) Enabled() bool { return p.bar != nil }

// Step marks one file as done.
func (p *UploadProgress) Step(path string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(path)
	_ = p.bar.Add(1)
}

// Finish completes and clears the bar.
func (p *UploadProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
