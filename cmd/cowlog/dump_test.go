/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr 16 13:10:02 2018 mstenber
 * Last modified: Mon Apr 16 13:58:20 2018 mstenber
 * Edit time:     19 min
 *
 */

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/stvp/assert"
)

var testEntries = []*wrapper.Entry{
	{Meta: wrapper.Meta{Flags: wrapper.FlagCheckpoint}},
	{Meta: wrapper.Meta{Flags: wrapper.FlagWrite | wrapper.FlagFUA, Sector: 8, Size: 4, Seq: 1},
		Data: []byte("abcd")},
	{Meta: wrapper.Meta{Flags: wrapper.FlagWrite, Sector: 16, Size: 4, Seq: 2},
		Data: make([]byte, 4)},
	{Meta: wrapper.Meta{Flags: wrapper.FlagFlush, Seq: 3}},
}

func dumpAll(t *testing.T, d *Dumper) []string {
	var buf bytes.Buffer
	d.Writer = &buf
	for _, e := range testEntries {
		_, err := d.Dump(e)
		assert.Nil(t, err)
	}
	s := strings.TrimSuffix(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestDump(t *testing.T) {
	t.Parallel()
	lines := dumpAll(t, &Dumper{})
	assert.Equal(t, len(lines), 4)
	assert.True(t, strings.Contains(lines[0], `"checkpoint":true`), lines[0])
	assert.True(t, strings.Contains(lines[1], `"flags":"write|fua"`), lines[1])
	assert.True(t, strings.Contains(lines[1], `"data":"61626364"`), lines[1])
	assert.True(t, strings.Contains(lines[2], `"zero":true`), lines[2])
	assert.True(t, strings.Contains(lines[3], `"time":"1970-01-01T00:00:00Z"`), lines[3])
	assert.False(t, strings.Contains(lines[3], `"data"`))
}

func TestDumpFilter(t *testing.T) {
	t.Parallel()
	f, err := NewFilter("write && sector >= 16")
	assert.Nil(t, err)
	lines := dumpAll(t, &Dumper{Filter: f})
	assert.Equal(t, len(lines), 1)
	assert.True(t, strings.Contains(lines[0], `"sector":16`), lines[0])

	f, err = NewFilter("checkpoint || flush")
	assert.Nil(t, err)
	assert.Equal(t, len(dumpAll(t, &Dumper{Filter: f})), 2)

	_, err = NewFilter("sector +")
	assert.True(t, err != nil)
	_, err = NewFilter("sector")
	assert.True(t, err != nil)
}

func TestDumpColor(t *testing.T) {
	t.Parallel()
	lines := dumpAll(t, &Dumper{Color: true})
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "\x1b["), l)
	}
}
