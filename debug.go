package main

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/intcode"
)

// contLimit bounds the number of instructions a single "cont" executes,
// so that a program stuck in a loop does not freeze the debugger.
const contLimit = 10_000_000

var debugCommands = []string{
	"step", "cont", "break", "watch", "in", "reset", "exit",
}

type debugger struct {
	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	m       *intcode.Machine
	prog    []int64 // reloaded by reset
	in      []int64 // sent to the machine on load and reset
	breaks  map[int]bool
	watches []int
}

func newDebugger(input []int64) *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),

		in:     input,
		breaks: map[int]bool{},
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range debugCommands {
			if strings.HasPrefix(c, t) {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		d.exec(cmd)
	})
	return d
}

func (d *debugger) Run() error { return d.app.Run() }

// load replaces the machine with a fresh one running prog.
func (d *debugger) load(prog []int64) {
	d.prog = prog
	d.m = intcode.NewMachine(prog)
	d.m.Input().Send(d.in...)
	log.Printf("loaded %d words", len(prog))
	d.refresh()
}

// exec runs a debugger command.
func (d *debugger) exec(cmd string) {
	if cmd == "exit" {
		d.app.Stop()
		return
	}
	if d.m == nil {
		log.Print("no program loaded")
		return
	}
	cmd, arg, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "s", "step":
		n := 1
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 1 {
				log.Printf("invalid step count %q", arg)
				return
			}
			n = v
		}
		d.step(n)
	case "c", "cont":
		d.cont()
	case "b", "break":
		if arg == "" {
			d.breaks = map[int]bool{}
			log.Print("cleared breaks")
			break
		}
		a, ok := parseAddr(arg)
		if !ok {
			log.Printf("invalid addr %q", arg)
			return
		}
		if d.breaks[a] {
			delete(d.breaks, a)
			log.Printf("cleared break %.4d", a)
		} else {
			d.breaks[a] = true
			log.Printf("set break %.4d", a)
		}
	case "w", "watch":
		if arg == "" {
			d.watches = nil
			log.Print("cleared watches")
			break
		}
		a, ok := parseAddr(arg)
		if !ok {
			log.Printf("invalid addr %q", arg)
			return
		}
		d.watches = append(d.watches, a)
		log.Printf("watching %.4d", a)
	case "i", "in":
		vs, err := parseValues(arg)
		if err != nil {
			log.Print(err)
			return
		}
		d.m.Input().Send(vs...)
		log.Printf("input %v", d.m.Input())
	case "r", "reset":
		d.load(d.prog)
		log.Print("reset")
	default:
		log.Printf("unknown command %q", cmd)
		return
	}
	d.refresh()
}

func (d *debugger) step(n int) {
	for i := 0; i < n; i++ {
		in, _ := d.m.Next()
		st, err := d.m.Step()
		if err != nil {
			log.Print(err)
			break
		}
		if st != intcode.Ready {
			log.Print(st)
			break
		}
		if n == 1 {
			log.Print(in)
		}
	}
	d.flush()
}

func (d *debugger) cont() {
	for i := 0; i < contLimit; i++ {
		if i > 0 && d.breaks[d.m.IP()] {
			log.Printf("break %.4d", d.m.IP())
			d.flush()
			return
		}
		st, err := d.m.Step()
		if err != nil {
			log.Print(err)
			d.flush()
			return
		}
		if st != intcode.Ready {
			log.Print(st)
			d.flush()
			return
		}
	}
	log.Printf("paused after %d steps", contLimit)
	d.flush()
}

// flush logs and discards any output the machine has produced.
func (d *debugger) flush() {
	if out := d.m.DrainOutput(); len(out) > 0 {
		log.Printf("out: %s", joinValues(out))
	}
}

func (d *debugger) refresh() {
	d.watch.SetText(d.watchContent())
	d.state.SetText(d.stateMsg())
	switch {
	case d.m.Status() == intcode.Halted:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkRed)
	case d.breaks[d.m.IP()]:
		d.state.SetTextColor(tcell.ColorYellow)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case d.m.Status() == intcode.AwaitingInput:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	default:
		d.state.SetTextColor(tcell.ColorBlack)
		d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	}
}

func (d *debugger) stateMsg() string {
	m := d.m
	next := "?"
	if in, ok := m.Next(); ok {
		next = in.String()
	}
	kind := "       "
	switch {
	case m.Status() == intcode.Halted:
		kind = "[HALT!]"
	case d.breaks[m.IP()]:
		kind = "[break]"
	case m.Status() == intcode.AwaitingInput:
		kind = "[input]"
	}
	msg := fmt.Sprintf("%-32s %s\nrb: %d steps: %d in: %v\n",
		next, kind, m.RelativeBase(), m.Steps(), m.Input())
	if err := m.Err(); err != nil {
		msg += err.Error()
	}
	return msg
}

func (d *debugger) watchContent() string {
	var b strings.Builder
	brks := make([]int, 0, len(d.breaks))
	for a := range d.breaks {
		brks = append(brks, a)
	}
	sort.Ints(brks)
	for _, a := range brks {
		fmt.Fprintf(&b, "[%.4d] brk!\n", a)
	}
	for _, a := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.4d] %d", a, d.m.Peek(a))
	}
	return b.String()
}

func parseAddr(s string) (int, bool) {
	a, err := strconv.Atoi(s)
	if err != nil || a < 0 || a >= intcode.MaxMemory {
		return 0, false
	}
	return a, true
}
