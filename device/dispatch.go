/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Tue Apr 10 15:02:31 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     39 min
 *
 */

package device

import (
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/page"
)

var zeroPage [page.Size]byte

// Submit processes single request synchronously.
//
// Reads and writes are processed page by page; the first failing page
// aborts the request, and whatever was written before it stays
// written.
func (self *Device) Submit(req *Request) error {
	mlog.Printf2("device/dispatch", "%s.Submit %v", self.name, req)
	start := SectorBytes(req.Sector)
	end := start + uint64(req.Length)
	capacity := SectorBytes(self.capacity)
	if req.Sector > self.capacity || end > capacity || end < start {
		return OutOfRange.New("%s: %v beyond %d sectors", self.name, req, self.capacity)
	}
	switch req.Op {
	case OpRead:
		return self.read(req, start)
	case OpFlush:
		// nothing is ever volatile beyond what we already have
		return nil
	}
	if !self.Writable() {
		return NotWritable.New("%s: %v", self.name, req)
	}
	switch req.Op {
	case OpWrite:
		return self.write(req, start)
	case OpWriteZeroes:
		return self.writeZeroes(req, start, end)
	case OpDiscard, OpSecureErase:
		self.discard(start, end)
		return nil
	}
	return InvalidState.New("%s: unsupported %v", self.name, req)
}

func (self *Device) read(req *Request, pos uint64) error {
	if req.Segments == nil {
		req.Segments = [][]byte{make([]byte, req.Length)}
	}
	req.checkSegments()
	for _, seg := range req.Segments {
		forEachChunk(pos, seg, func(index uint64, off int, p []byte) error {
			self.readChunk(index, off, p)
			return nil
		})
		pos += uint64(len(seg))
	}
	return nil
}

func (self *Device) write(req *Request, pos uint64) error {
	req.checkSegments()
	for _, seg := range req.Segments {
		err := forEachChunk(pos, seg, self.writeChunk)
		if err != nil {
			return self.allocationError(req, err)
		}
		pos += uint64(len(seg))
	}
	return nil
}

func (self *Device) writeZeroes(req *Request, start, end uint64) error {
	for pos := start; pos < end; {
		index, off := page.IndexOf(pos)
		n := uint64(page.Size - off)
		if pos+n > end {
			n = end - pos
		}
		err := self.writeChunk(index, off, zeroPage[:n])
		if err != nil {
			return self.allocationError(req, err)
		}
		pos += n
	}
	return nil
}

func (self *Device) allocationError(req *Request, err error) error {
	mlog.Printf2("device/dispatch", " %v failed: %v", req, err)
	if !page.Exhausted.Has(err) {
		return err
	}
	if req.Flags&FlagNoWait != 0 {
		return WouldBlock.Wrap(err)
	}
	return OutOfMemory.Wrap(err)
}
