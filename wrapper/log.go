/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Apr 11 16:02:11 2018 mstenber
 * Last modified: Thu Apr 19 10:12:02 2018 mstenber
 * Edit time:     78 min
 *
 */

package wrapper

import (
	"time"

	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/util"
)

// Log is ordered record of intercepted operations, consumed by the
// test harness one entry at a time.
//
// Entries live in single slice; the read cursor is an index into
// it, and index equal to the length of the slice means the cursor
// is null (everything has been consumed). Appending to a log with
// null cursor thereby makes the new entry current.
//
// The log is never empty: a checkpoint entry numbered 0 is placed
// at its head whenever it is created or cleared.
type Log struct {
	lock       util.MutexLocked
	entries    []*Entry
	read       int
	checkpoint uint64
	seq        uint64

	// Now is used to timestamp checkpoints; tests may override it.
	Now func() time.Time
}

func NewLog() *Log {
	self := &Log{Now: time.Now}
	self.Clear()
	return self
}

func (self *Log) appendLocked(e *Entry) {
	e.Seq = self.seq
	self.seq++
	self.entries = append(self.entries, e)
	mlog.Printf2("wrapper/log", "append %v", &e.Meta)
}

func (self *Log) checkpointEntry(n uint64) *Entry {
	return &Entry{Meta: Meta{Flags: FlagCheckpoint, Sector: n,
		Time: self.Now().UnixNano()}}
}

// Append adds fully built entry to the end of the log. The entry
// must not be modified afterwards.
func (self *Log) Append(e *Entry) {
	defer self.lock.Locked()()
	self.appendLocked(e)
}

// Checkpoint appends checkpoint entry and returns its number. The
// numbers start from 1 after clear and are contiguous.
func (self *Log) Checkpoint() uint64 {
	e := self.checkpointEntry(0)
	defer self.lock.Locked()()
	e.Sector = self.checkpoint
	self.checkpoint++
	self.appendLocked(e)
	return e.Sector
}

// Clear drops every entry, resets the checkpoint counter and
// reinitializes the log with the checkpoint 0 entry, which becomes
// current.
func (self *Log) Clear() {
	e := self.checkpointEntry(0)
	defer self.lock.Locked()()
	mlog.Printf2("wrapper/log", "Clear - dropping %d entries", len(self.entries))
	self.entries = nil
	self.read = 0
	self.seq = 0
	self.checkpoint = 1
	self.appendLocked(e)
}

// Len returns the total number of entries, including consumed ones.
func (self *Log) Len() int {
	defer self.lock.Locked()()
	return len(self.entries)
}

// Unread returns the number of entries not yet consumed.
func (self *Log) Unread() int {
	defer self.lock.Locked()()
	return len(self.entries) - self.read
}

// Entries returns snapshot of every entry in the log.
func (self *Log) Entries() []*Entry {
	defer self.lock.Locked()()
	return append([]*Entry(nil), self.entries...)
}

func (self *Log) currentLocked() (*Entry, error) {
	if self.read == len(self.entries) {
		return nil, device.NoData.New("log cursor at end")
	}
	return self.entries[self.read], nil
}

// Current returns the entry under the cursor.
func (self *Log) Current() (*Entry, error) {
	defer self.lock.Locked()()
	return self.currentLocked()
}

// GetMeta returns metadata of the current entry.
func (self *Log) GetMeta() (Meta, error) {
	e, err := self.Current()
	if err != nil {
		return Meta{}, err
	}
	return e.Meta, nil
}

// Data returns the payload of the current entry. Entries without
// payload, such as checkpoints and discards, fail with NoData. The
// returned slice must not be modified.
func (self *Log) Data() ([]byte, error) {
	e, err := self.Current()
	if err != nil {
		return nil, err
	}
	if len(e.Data) == 0 {
		return nil, device.NoData.New("entry #%d has no payload", e.Seq)
	}
	return e.Data, nil
}

// GetData copies the payload of the current entry into buf, which
// must be at least Size bytes long.
func (self *Log) GetData(buf []byte) (int, error) {
	data, err := self.Data()
	if err != nil {
		return 0, err
	}
	if len(buf) < len(data) {
		return 0, device.InvalidState.New("buffer of %d bytes too small for %d", len(buf), len(data))
	}
	return copy(buf, data), nil
}

// Advance moves the cursor to the next entry. Moving past the last
// entry nulls the cursor; advancing null cursor fails.
func (self *Log) Advance() error {
	defer self.lock.Locked()()
	if _, err := self.currentLocked(); err != nil {
		return err
	}
	self.read++
	return nil
}
