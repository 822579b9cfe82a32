/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan  4 12:49:31 2018 mstenber
 * Last modified: Tue Apr 10 11:40:12 2018 mstenber
 * Edit time:     4 min
 *
 */

// gid provides the goroutine id; it is only used for tracing output,
// never for program logic.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// GetGoroutineID parses the id out of the runtime.Stack header
// ("goroutine N [running]:"). 0 is returned if that fails.
func GetGoroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	if !bytes.HasPrefix(b, goroutinePrefix) {
		return 0
	}
	b = b[len(goroutinePrefix):]
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}
