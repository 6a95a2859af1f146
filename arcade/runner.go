package arcade

import (
	"context"
	"log"
	"sync/atomic"
)

// Runner plays a Cabinet, optionally showing its screen in a window.
type Runner struct {
	gui    bool
	manual bool
	scale  int

	update     chan *Screen
	updateDone chan bool
	stick      atomic.Int64
}

// NewRunner returns a Runner. If enableGUI is set the screen is shown in a
// window; if manual is also set the joystick follows the arrow keys instead
// of the autopilot.
func NewRunner(enableGUI, manual bool, scale int) *Runner {
	return &Runner{
		gui:        enableGUI,
		manual:     enableGUI && manual,
		scale:      scale,
		update:     make(chan *Screen),
		updateDone: make(chan bool),
	}
}

// Run plays c until its program halts or, with the GUI enabled, the window
// is closed. It returns the final score.
func (r *Runner) Run(c *Cabinet) (score int64, err error) {
	if !r.gui {
		err = c.Play(context.Background())
		return c.Screen().Score(), err
	}

	var (
		ctx, cancel = context.WithCancel(context.Background())
		exit        = make(chan bool)
		playErr     error
	)
	defer cancel()
	c.Frame = func(s *Screen) {
		// Hand the screen to the GUI and wait until it has been copied;
		// this paces the game to the window's refresh rate.
		select {
		case r.update <- s:
			<-r.updateDone
		case <-ctx.Done():
		}
	}
	if r.manual {
		c.Joystick = func(*Screen) int64 { return r.stick.Load() }
	}
	go func() {
		playErr = c.Play(ctx)
		if playErr != nil && playErr != context.Canceled {
			log.Printf("arcade: %v", playErr)
		}
		close(exit)
	}()

	guiErr := newGUI(r).Run(exit)
	cancel()
	<-exit
	if guiErr != nil {
		return c.Screen().Score(), guiErr
	}
	if playErr == context.Canceled {
		// The window was closed before the game ended.
		playErr = nil
	}
	return c.Screen().Score(), playErr
}
