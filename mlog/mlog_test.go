/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 30 14:31:18 2017 mstenber
 * Last modified: Tue Apr 10 12:40:22 2018 mstenber
 * Edit time:     27 min
 *
 */

package mlog

import (
	"bytes"
	"log"
	"testing"

	"github.com/stvp/assert"
)

func withGids(v bool) func() {
	old := DumpGids
	DumpGids = v
	return func() {
		DumpGids = old
	}
}

func TestMlog(t *testing.T) {
	defer withGids(false)()
	add := func(pattern string, outputted bool) {
		t.Run(pattern, func(t *testing.T) {
			var b bytes.Buffer
			logger := log.New(&b, "", 0)
			defer SetLogger(logger)()
			defer SetPattern(pattern)()
			Printf("foo %s", "bar")
			assert.Equal(t, b.Len() > 0, outputted)
			if outputted {
				assert.Equal(t, b.String(), "foo bar\n")
			}
		})
	}
	add("", false)
	add("zzzglorb", false)
	add("mlog_test", true)
}

func TestPrintf2(t *testing.T) {
	defer withGids(false)()
	var b bytes.Buffer
	defer SetLogger(log.New(&b, "", 0))()
	defer SetPattern("^device/")()
	assert.True(t, IsEnabled())
	Printf2("device/overlay", "hit %d", 1)
	Printf2("wrapper/log", "miss %d", 2)
	assert.Equal(t, b.String(), "hit 1\n")
}

//go:noinline
func nested(level int) {
	if level == 0 {
		return
	}
	Printf("d%d", level)
	nested(level - 1)
	Printf("D%d", level)
}

func TestMlogRecursion(t *testing.T) {
	defer withGids(false)()
	var b bytes.Buffer
	Reset()
	defer SetLogger(log.New(&b, "", 0))()
	defer SetPattern(".")()
	nested(3)
	assert.Equal(t, b.String(), "d3\n.d2\n..d1\n..D1\n.D2\nD3\n")
}

func BenchmarkMlogDisabled(b *testing.B) {
	defer SetPattern("")()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Printf2("x", "y %d", 42)
	}
}

func BenchmarkMlogNotMatching(b *testing.B) {
	defer SetPattern("zzglorb")()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Printf2("x", "y")
	}
}
