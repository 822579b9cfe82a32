/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Apr 11 15:20:30 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     52 min
 *
 */

package wrapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/util"
)

// OpFlags describe logged operation independent of how the
// platform adapter encoded it.
type OpFlags uint32

const (
	FlagWrite OpFlags = 1 << iota
	FlagDiscard
	FlagSecureErase
	FlagWriteZeroes

	// FlagFlush is set both for empty flushes and for writes that
	// asked for preflush.
	FlagFlush
	FlagFUA
	FlagSync
	FlagMeta

	// FlagCheckpoint marks checkpoint entries; their Sector is
	// the checkpoint number.
	FlagCheckpoint
)

var flagNames = []string{"write", "discard", "secure-erase", "write-zeroes",
	"flush", "fua", "sync", "meta", "checkpoint"}

func (self OpFlags) String() string {
	var names []string
	for i, name := range flagNames {
		if self&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "|")
}

var opFlags = map[device.Op]OpFlags{
	device.OpWrite:       FlagWrite,
	device.OpDiscard:     FlagDiscard,
	device.OpSecureErase: FlagSecureErase,
	device.OpWriteZeroes: FlagWriteZeroes,
	device.OpFlush:       FlagFlush,
}

var requestFlags = []struct {
	from device.Flags
	to   OpFlags
}{
	{device.FlagPreflush, FlagFlush},
	{device.FlagFUA, FlagFUA},
	{device.FlagSync, FlagSync},
	{device.FlagMeta, FlagMeta},
}

// Meta is what is known about single logged operation.
type Meta struct {
	Flags  OpFlags
	Sector uint64

	// Size is the length of the operation in bytes; for writes it
	// is also the length of the payload.
	Size uint32

	// Time is when the operation was intercepted, in unix
	// nanoseconds.
	Time int64

	// Seq is position of the entry in the log since the last clear.
	Seq uint64
}

func (self Meta) IsCheckpoint() bool {
	return self.Flags&FlagCheckpoint != 0
}

func (self Meta) String() string {
	if self.IsCheckpoint() {
		return fmt.Sprintf("#%d checkpoint %d", self.Seq, self.Sector)
	}
	return fmt.Sprintf("#%d %v@%d+%d", self.Seq, self.Flags, self.Sector, self.Size)
}

// Entry is single log entry. Entries are immutable once appended to
// the log.
type Entry struct {
	Meta

	// Data is the payload; only writes have one.
	Data []byte
}

// Loggable returns true if the request ends up in the log: every
// modifying request, and reads that carry flush or FUA flag.
func Loggable(req *device.Request) bool {
	return req.Op != device.OpRead ||
		req.Flags&(device.FlagPreflush|device.FlagFUA) != 0
}

// NewEntry captures the request. The payload is copied, so the
// request buffers may be reused once it has been submitted.
func NewEntry(req *device.Request, now time.Time) *Entry {
	e := &Entry{Meta: Meta{
		Flags:  opFlags[req.Op],
		Sector: req.Sector,
		Size:   req.Length,
		Time:   now.UnixNano(),
	}}
	for _, rf := range requestFlags {
		if req.Flags&rf.from != 0 {
			e.Flags |= rf.to
		}
	}
	if req.Op == device.OpWrite {
		e.Data = util.ConcatBytes(req.Segments...)
	}
	return e
}

// Request reconstructs request equivalent to the logged one. nil is
// returned for checkpoints. Logged reads come back as flushes, as
// only their ordering effect is of interest.
func (self *Entry) Request() *device.Request {
	if self.IsCheckpoint() {
		return nil
	}
	req := &device.Request{Sector: self.Sector, Length: self.Size}
	switch {
	case self.Flags&FlagWrite != 0:
		req.Op = device.OpWrite
		req.Segments = [][]byte{self.Data}
	case self.Flags&FlagDiscard != 0:
		req.Op = device.OpDiscard
	case self.Flags&FlagSecureErase != 0:
		req.Op = device.OpSecureErase
	case self.Flags&FlagWriteZeroes != 0:
		req.Op = device.OpWriteZeroes
	default:
		req.Op = device.OpFlush
	}
	if req.Op != device.OpFlush && self.Flags&FlagFlush != 0 {
		req.Flags |= device.FlagPreflush
	}
	for _, rf := range requestFlags[1:] {
		if self.Flags&rf.to != 0 {
			req.Flags |= rf.from
		}
	}
	return req
}
