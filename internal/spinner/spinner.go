package spinner

import (
	"fmt"
	"io"
	"time"

	"github.com/ict4events/eventsite/internal/styles"
)

var spinnerStages = []string{"▉", "▊", "▋", "▌", "▍", "▎", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// Wait draws a bar spinner with the elapsed time on w until done is closed
// or receives, then clears the line.
func Wait(w io.Writer, label string, done <-chan struct{}) {
	start := time.Now()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s := spinnerStages[i%len(spinnerStages)]
		fmt.Fprintf(w, "\r%s %s %.2fs", styles.Success.Render(s), label, time.Since(start).Seconds())

		select {
		case <-done:
			fmt.Fprint(w, "\r\033[2K")
			return
		case <-ticker.C:
		}
	}
}

// Run calls fn while a spinner is shown and returns its error.
func Run(w io.Writer, label string, fn func() error) error {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		Wait(w, label, done)
		close(finished)
	}()

	err := fn()
	close(done)
	<-finished
	return err
}
