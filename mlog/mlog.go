/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 30 13:41:33 2017 mstenber
 * Last modified: Tue Apr 10 12:31:08 2018 mstenber
 * Edit time:     131 min
 *
 */

// mlog is maybe-log. It is a small wrapper of standard 'log' which
// only prints what has been asked for:
//
// - MLOG environment variable (or -mlog flag) is a regular expression
// matched against the file key given to Printf2 (or the source file
// name with Printf); by default everything is off, and disabled
// logging costs one atomic load
//
// - call stack depth is used to indent the output, so nested
// operations (e.g. wrapper forwarding to device) are easy to follow
package mlog

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fingon/go-cowbrd/util/gid"
)

const (
	stateUninitialized int32 = iota
	stateDisabled
	stateEnabled
)

const maxDepth = 100

// status may be read without holding state.lock
var status int32 = stateUninitialized

var state struct {
	lock     sync.Mutex
	logger   *log.Logger
	pattern  string
	re       *regexp.Regexp
	matches  map[string]bool
	minDepth int
	callers  []uintptr
}

var flagPattern = flag.String("mlog", "", "Enable logging based on the given file key regular expression")

// DumpGids controls whether goroutine id is prefixed to each line.
var DumpGids = true

func init() {
	state.logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
	Reset()
}

// Reset returns the module to the state it was at startup; next log
// call consults the environment (and flag) again.
func Reset() {
	state.lock.Lock()
	defer state.lock.Unlock()
	atomic.StoreInt32(&status, stateUninitialized)
	state.minDepth = maxDepth
	state.callers = make([]uintptr, maxDepth)
}

// IsEnabled can be used to check if mlog is in use at all before
// doing something expensive.
func IsEnabled() bool {
	return atomic.LoadInt32(&status) != stateDisabled
}

// SetLogger overrides the output logger. The returned function
// restores the previous one.
func SetLogger(l *log.Logger) (undo func()) {
	state.lock.Lock()
	defer state.lock.Unlock()
	old := state.logger
	state.logger = l
	return func() {
		state.lock.Lock()
		defer state.lock.Unlock()
		state.logger = old
	}
}

// SetPattern overrides the environment-provided pattern. The returned
// function restores the previous one.
func SetPattern(p string) (undo func()) {
	state.lock.Lock()
	defer state.lock.Unlock()
	old := state.pattern
	setPattern(p)
	return func() {
		state.lock.Lock()
		defer state.lock.Unlock()
		setPattern(old)
	}
}

// setPattern must be called with state.lock held.
func setPattern(p string) {
	state.pattern = p
	if p == "" {
		state.re = nil
		atomic.StoreInt32(&status, stateDisabled)
		return
	}
	state.re = regexp.MustCompile(p)
	state.matches = make(map[string]bool)
	atomic.StoreInt32(&status, stateEnabled)
}

// Printf is drop-in replacement of log.Printf keyed by the caller's
// source file. runtime.Caller is relatively expensive, so hot paths
// should use Printf2 instead.
func Printf(format string, args ...interface{}) {
	if atomic.LoadInt32(&status) == stateDisabled {
		return
	}
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	Printf2(file, format, args...)
}

// Printf2 logs if key matches the current pattern. By convention key
// is the package-relative file name without extension, e.g.
// "device/overlay".
func Printf2(key string, format string, args ...interface{}) {
	if atomic.LoadInt32(&status) == stateDisabled {
		return
	}
	state.lock.Lock()
	defer state.lock.Unlock()
	if atomic.LoadInt32(&status) == stateUninitialized {
		p := os.Getenv("MLOG")
		if *flagPattern != "" {
			p = *flagPattern
		}
		setPattern(p)
	}
	if state.re == nil {
		return
	}
	match, ok := state.matches[key]
	if !ok {
		match = state.re.MatchString(key)
		state.matches[key] = match
	}
	if !match {
		return
	}
	depth := runtime.Callers(1, state.callers)
	if depth < state.minDepth {
		state.minDepth = depth
	}
	depth -= state.minDepth
	if depth > 0 {
		format = strings.Repeat(".", depth) + format
	}
	if DumpGids {
		format = fmt.Sprintf("%8d %s", gid.GetGoroutineID(), format)
	}
	state.logger.Printf(format, args...)
}
