package arcade

import (
	"image"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

func newGUI(r *Runner) *gui {
	scale := r.scale
	if scale < 1 {
		scale = 8
	}
	return &gui{Runner: r, scale: scale}
}

func (g *gui) Run(exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		var w screen.Window
		w, err = s.NewWindow(&screen.NewWindowOptions{
			Title:  "intcode arcade",
			Width:  44 * g.scale,
			Height: 24*g.scale + scoreHeight,
		})
		if err != nil {
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{}) // wake the event loop
					return
				}
			}
		}()

		defer g.release()

		var sz size.Event
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				switch e.Code {
				case key.CodeEscape:
					return
				case key.CodeLeftArrow, key.CodeRightArrow:
					v := Neutral
					if e.Direction != key.DirRelease {
						v = Left
						if e.Code == key.CodeRightArrow {
							v = Right
						}
					}
					g.stick.Store(v)
				}

			case paint.Event:
				g.dirty = true

			case update:
				select {
				case scr := <-g.update:
					if err := g.frame(s, scr); err != nil {
						log.Printf("arcade: frame: %v", err)
					}
					g.updateDone <- true
				default:
					// cpu is busy
				}
				if g.dirty && g.tex != nil {
					g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
					w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
					w.Publish()
					g.dirty = false
				}

			case error:
				log.Print(e)
			}
		}
	})
	return err
}

type gui struct {
	*Runner

	scale int
	size  image.Point
	buf   screen.Buffer
	tex   screen.Texture
	ops   int // updated to match the screen's ops after copying
	dirty bool
}

// frame copies the screen into the window buffer. It must only be called
// while the game is waiting on updateDone.
func (g *gui) frame(s screen.Screen, scr *Screen) (err error) {
	if g.tex != nil && g.ops == scr.Ops() {
		return nil
	}
	m := scr.Image(g.scale)
	if g.tex == nil || g.size != m.Bounds().Size() {
		g.release()
		g.size = m.Bounds().Size()
		if g.buf, err = s.NewBuffer(g.size); err != nil {
			return
		}
		if g.tex, err = s.NewTexture(g.size); err != nil {
			return
		}
	}
	copy(g.buf.RGBA().Pix, m.Pix)
	g.ops = scr.Ops()
	g.dirty = true
	return nil
}

func (g *gui) release() {
	if g.tex != nil {
		g.tex.Release()
		g.tex = nil
	}
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
