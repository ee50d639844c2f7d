package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kingrea/sce/internal/director"
	"github.com/kingrea/sce/internal/ui"
)

// DefaultFrameRate is used when Options.FrameRate is not positive.
const DefaultFrameRate = 30

// ErrAwaitingInput stops a headless run that reached a dialog without
// AutoConfirm; nothing else could ever press the button.
var ErrAwaitingInput = errors.New("playback: waiting for confirm input")

// Options configures a headless run.
type Options struct {
	Session     *Session
	FrameRate   int
	AutoConfirm bool
	// MaxTicks stops the run after this many ticks; 0 means no limit.
	MaxTicks int
	// OnFrame is called after every tick with the widgets drawn that frame.
	OnFrame func(tick uint64, widgets []ui.Widget)
}

// Report summarizes a finished run.
type Report struct {
	Ticks    uint64
	Snapshot director.Snapshot
	// Dialogs lists every dialog shown, once per appearance.
	Dialogs []ui.Widget
}

// Run ticks the session with a fixed delta until the script is done, MaxTicks
// is reached or ctx is cancelled. The report is filled in on every return.
func Run(ctx context.Context, opts Options) (Report, error) {
	var report Report
	sess := opts.Session
	if sess == nil {
		return report, fmt.Errorf("playback: session is required")
	}
	rate := opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	delta := 1 / float64(rate)

	var lastDialog *ui.Widget
	for !sess.Done() {
		if err := ctx.Err(); err != nil {
			report.Snapshot = sess.Snapshot()
			return report, err
		}
		if opts.MaxTicks > 0 && report.Ticks >= uint64(opts.MaxTicks) {
			break
		}
		sess.Step(ui.Input{Confirm: opts.AutoConfirm}, delta)
		report.Ticks++

		widgets := sess.Overlay.Widgets()
		lastDialog = collectDialog(&report, widgets, lastDialog)
		if sess.Overlay.Confirmed() {
			// The button closed this dialog; an identical one on the next
			// frame is a new line, not the same box still open.
			lastDialog = nil
		}
		if opts.OnFrame != nil {
			opts.OnFrame(report.Ticks, widgets)
		}
		if !opts.AutoConfirm && sess.Overlay.WaitingForConfirm() {
			report.Snapshot = sess.Snapshot()
			sess.log.WithField("tick", report.Ticks).Warn("playback: dialog waiting without auto confirm")
			return report, ErrAwaitingInput
		}
	}
	report.Snapshot = sess.Snapshot()
	sess.log.WithFields(logrus.Fields{
		"ticks":  report.Ticks,
		"status": report.Snapshot.Status,
	}).Info("playback: run finished")
	return report, nil
}

// collectDialog appends the frame's dialog unless it is the box that stayed
// open from the previous frame.
func collectDialog(report *Report, widgets []ui.Widget, last *ui.Widget) *ui.Widget {
	for i := range widgets {
		w := widgets[i]
		if w.Kind != ui.WidgetDialog {
			continue
		}
		if last == nil || *last != w {
			report.Dialogs = append(report.Dialogs, w)
		}
		return &w
	}
	return nil
}
