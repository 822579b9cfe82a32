/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr  9 14:12:40 2018 mstenber
 * Last modified: Thu Apr 12 10:20:14 2018 mstenber
 * Edit time:     41 min
 *
 */

package device

import (
	"fmt"
	"log"

	"github.com/fingon/go-cowbrd/page"
	"github.com/fingon/go-cowbrd/util"
)

// Op is the normalized storage operation handed to us by whatever
// platform adapter sits in front.
type Op uint8

const (
	OpRead Op = iota
	OpWrite
	OpDiscard
	OpSecureErase
	OpWriteZeroes
	OpFlush
)

var opNames = []string{"read", "write", "discard", "secure-erase", "write-zeroes", "flush"}

func (self Op) String() string {
	if int(self) < len(opNames) {
		return opNames[self]
	}
	return fmt.Sprintf("op-%d", self)
}

// Flags modify the request; only NoWait changes our own behavior,
// rest are carried for the benefit of the write log.
type Flags uint32

const (
	// FlagPreflush asks previously completed writes to be durable
	// before this one.
	FlagPreflush Flags = 1 << iota

	// FlagFUA forces this write itself to be durable on completion.
	FlagFUA

	FlagSync
	FlagMeta

	// FlagNoWait means caller does not want to block on page
	// allocation; failure is reported as WouldBlock.
	FlagNoWait
)

// Request is one storage request. Sector is in 512-byte units,
// Length in bytes. Segments is the scatter/gather list: for writes it
// contains the payload, for reads the destination buffers (if nil,
// single buffer of Length bytes is allocated). Total length of the
// segments must equal Length for reads and writes.
type Request struct {
	Op       Op
	Sector   uint64
	Length   uint32
	Segments [][]byte
	Flags    Flags
}

func (self *Request) String() string {
	return fmt.Sprintf("%v@%d+%d/%x", self.Op, self.Sector, self.Length, self.Flags)
}

// Data returns the segments gathered to single slice.
func (self *Request) Data() []byte {
	if len(self.Segments) == 1 {
		return self.Segments[0]
	}
	return util.ConcatBytes(self.Segments...)
}

func (self *Request) segmentLength() (n int) {
	for _, seg := range self.Segments {
		n += len(seg)
	}
	return
}

func (self *Request) checkSegments() {
	if n := self.segmentLength(); n != int(self.Length) {
		log.Panicf("%v: segments hold %d bytes", self, n)
	}
}

// Target is anything requests can be submitted to; in-memory devices
// and the write log wrapper in front of them.
type Target interface {
	Name() string
	CapacitySectors() uint64
	Submit(req *Request) error
}

// ReadAt reads length bytes at sector from t.
func ReadAt(t Target, sector uint64, length int) ([]byte, error) {
	req := &Request{Op: OpRead, Sector: sector, Length: uint32(length)}
	if err := t.Submit(req); err != nil {
		return nil, err
	}
	return req.Data(), nil
}

// WriteAt writes data at sector of t.
func WriteAt(t Target, sector uint64, data []byte) error {
	req := &Request{Op: OpWrite, Sector: sector, Length: uint32(len(data)),
		Segments: [][]byte{data}}
	return t.Submit(req)
}

// Discard discards length bytes at sector of t.
func Discard(t Target, sector uint64, length int) error {
	return t.Submit(&Request{Op: OpDiscard, Sector: sector, Length: uint32(length)})
}

// Flush issues empty flush to t.
func Flush(t Target) error {
	return t.Submit(&Request{Op: OpFlush, Flags: FlagPreflush})
}

// SectorBytes converts sector count to bytes.
func SectorBytes(sectors uint64) uint64 {
	return sectors << page.SectorShift
}
