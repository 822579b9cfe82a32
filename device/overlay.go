/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Tue Apr 10 13:11:47 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     44 min
 *
 */

package device

import (
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/page"
)

// Overlay rules, in short: own store first, then exactly one hop to
// the parent, then zeros. Writes only ever touch own store.

// visiblePage returns the page that currently provides the content at
// index for this device, or nil if the content is zeros.
func (self *Device) visiblePage(index uint64) *page.Page {
	if p := self.pages.Lookup(index); p != nil {
		return p
	}
	if self.parent != nil {
		return self.parent.pages.Lookup(index)
	}
	return nil
}

// readChunk fills p from offset off of page index; p must not cross
// the page boundary.
func (self *Device) readChunk(index uint64, off int, p []byte) {
	if pg := self.visiblePage(index); pg != nil {
		pg.ReadAt(p, off)
		return
	}
	for i := range p {
		p[i] = 0
	}
}

// seed is the copy-on-write step: fresh local page starts as copy of
// the parent's page, if any.
func (self *Device) seed(p *page.Page) {
	if self.parent == nil {
		return
	}
	if pp := self.parent.pages.Lookup(p.Index); pp != nil {
		mlog.Printf2("device/overlay", "%s: cow page %d from %s", self.name, p.Index, self.parent.name)
		p.CopyFrom(pp)
	}
}

// writeChunk stores p at offset off of page index; p must not cross
// the page boundary.
func (self *Device) writeChunk(index uint64, off int, p []byte) error {
	pg, _, err := self.pages.InsertIfAbsent(index, self.seed)
	if err != nil {
		return err
	}
	pg.WriteAt(p, off)
	return nil
}

// discard drops the pages wholly inside [start, end) bytes from own
// store. Partially covered pages at either end are left as they
// are. On a snapshot this exposes the parent's content again.
func (self *Device) discard(start, end uint64) int {
	first := (start + page.Size - 1) >> page.Shift
	last := end >> page.Shift
	n := 0
	for i := first; i < last; i++ {
		if self.pages.Erase(i) {
			n++
		}
	}
	mlog.Printf2("device/overlay", "%s: discard [%d,%d) dropped %d pages", self.name, start, end, n)
	return n
}

// forEachChunk splits the byte range [pos, pos+len(buf)) into pieces
// that do not cross page boundaries. First error aborts.
func forEachChunk(pos uint64, buf []byte, cb func(index uint64, off int, p []byte) error) error {
	for len(buf) > 0 {
		index, off := page.IndexOf(pos)
		n := page.Size - off
		if n > len(buf) {
			n = len(buf)
		}
		if err := cb(index, off, buf[:n]); err != nil {
			return err
		}
		buf = buf[n:]
		pos += uint64(n)
	}
	return nil
}
