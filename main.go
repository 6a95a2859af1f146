// Command intcode executes Intcode programs.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"

	"github.com/nf/intcode/arcade"
	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/robot"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		inFlag    = flag.String("in", "", "comma-separated input `values`")
		traceFlag = flag.Bool("trace", false, "log each instruction before it executes")
		asciiFlag = flag.Bool("ascii", false, "exchange ASCII text with the program on stdin and stdout")

		arcadeFlag = flag.Bool("arcade", false, "run the program as an arcade cabinet")
		freeFlag   = flag.Bool("free", false, "arcade: free play (write 2 at address 0)")
		cliFlag    = flag.Bool("cli", false, "arcade: disable the window")
		manualFlag = flag.Bool("manual", false, "arcade: steer the paddle with the arrow keys")
		scaleFlag  = flag.Int("scale", 8, "arcade: window pixels per tile")

		robotFlag = flag.Bool("robot", false, "run the program as a hull painting robot")
		whiteFlag = flag.Bool("white", false, "robot: start on a white panel")

		nounVerbFlag = flag.String("nounverb", "", "find the noun and verb that leave `target` at address 0")

		phasesFlag = flag.String("phases", "", "run an amplifier chain with the comma-separated phase `settings`")
		loopFlag   = flag.Bool("loop", false, "amplifiers: connect the last amplifier back to the first")
		searchFlag = flag.Bool("search", false, "amplifiers: try every ordering of the phase settings")

		devFlag   = flag.Bool("dev", false, "enable developer mode (re-run the program when its file changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-in values | -ascii] [-trace] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -arcade [-free] [-cli | -manual] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -robot [-white] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -nounverb target <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -phases settings [-loop] [-search] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-in values] <-dev | -debug> <program>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	file := flag.Arg(0)

	input, err := parseValues(*inFlag)
	if err != nil {
		log.Fatalf("-in: %v", err)
	}

	if *devFlag || *debugFlag {
		if err := devMode(file, input, *debugFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	switch {
	case *arcadeFlag:
		err = runArcade(file, *freeFlag, !*cliFlag, *manualFlag, *scaleFlag)
	case *robotFlag:
		err = runRobot(os.Stdout, file, *whiteFlag)
	case *nounVerbFlag != "":
		var target int64
		if target, err = strconv.ParseInt(*nounVerbFlag, 10, 64); err != nil {
			err = fmt.Errorf("-nounverb: %v", err)
			break
		}
		err = runNounVerb(os.Stdout, file, target)
	case *asciiFlag:
		err = runConsole(file, *traceFlag)
	case *phasesFlag != "":
		err = runAmplifiers(os.Stdout, file, *phasesFlag, *loopFlag, *searchFlag)
	default:
		err = run(os.Stdout, file, input, *traceFlag)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

// parseValues parses a comma-separated list of integers. An empty string
// yields no values.
func parseValues(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	return intcode.ParseString(s)
}

func run(w io.Writer, file string, input []int64, trace bool) error {
	prog, err := intcode.ReadFile(file)
	if err != nil {
		return err
	}
	m := intcode.NewMachine(prog)
	m.Input().Send(input...)
	if trace {
		m.Trace = traceFunc
	}
	st, err := m.Run()
	for _, v := range m.DrainOutput() {
		fmt.Fprintln(w, v)
	}
	if err != nil {
		return err
	}
	if st == intcode.AwaitingInput {
		return fmt.Errorf("program wants more input after %d steps (at %.4d)", m.Steps(), m.IP())
	}
	return nil
}

func runConsole(file string, trace bool) error {
	prog, err := intcode.ReadFile(file)
	if err != nil {
		return err
	}
	m := intcode.NewMachine(prog)
	if trace {
		m.Trace = traceFunc
	}
	return newConsole(os.Stdin, os.Stdout).run(m)
}

func traceFunc(m *intcode.Machine, in intcode.Instruction) {
	log.Printf("trace: rb=%d %v", m.RelativeBase(), in)
}

func runArcade(file string, freePlay, gui, manual bool, scale int) error {
	prog, err := intcode.ReadFile(file)
	if err != nil {
		return err
	}
	c := arcade.New(prog, freePlay)
	score, err := arcade.NewRunner(gui, manual, scale).Run(c)
	if err != nil {
		return err
	}
	s := c.Screen()
	log.Printf("arcade: %d blocks left, score %d", s.Count(arcade.Block), score)
	if !gui {
		fmt.Print(s)
	}
	return nil
}

func runRobot(w io.Writer, file string, white bool) error {
	prog, err := intcode.ReadFile(file)
	if err != nil {
		return err
	}
	start := robot.Black
	if white {
		start = robot.White
	}
	r := robot.New(prog, start)
	if err := r.Run(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d panels painted\n", r.Painted())
	fmt.Fprint(w, r)
	return nil
}
