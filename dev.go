package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/intcode"
)

// devMode runs the program in file, and runs it again each time the file
// changes. With debug set the program is loaded into the debugger instead.
func devMode(file string, input []int64, debug bool) error {
	file = filepath.Clean(file)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}

	reload := func() {
		if err := run(os.Stdout, file, input, false); err != nil {
			log.Printf("dev: %v", err)
		}
	}
	var d *debugger
	if debug {
		d = newDebugger(input)
		log.SetPrefix("")
		log.SetOutput(d.log)
		defer func() {
			log.SetOutput(os.Stderr)
			log.SetPrefix("intcode: ")
		}()
		reload = func() {
			prog, err := intcode.ReadFile(file)
			if err != nil {
				log.Printf("dev: %v", err)
				return
			}
			d.app.QueueUpdateDraw(func() { d.load(prog) })
		}
	}

	go func() {
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				log.Printf("dev: run %s", filepath.Base(file))
				reload()
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if ev.Name == file && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()

	if d != nil {
		return d.Run()
	}
	select {}
}
