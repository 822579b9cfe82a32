/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr  9 11:02:44 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     48 min
 *
 */

// page is the leaf storage of the in-memory block devices: a sparse
// page index -> page mapping. Absence of a page means the range was
// never written (or was discarded), and reads as zeros unless some
// overlay above decides otherwise.
package page

import (
	"github.com/fingon/go-cowbrd/util"
	"github.com/zeebo/errs"
)

const (
	SectorShift    = 9
	SectorSize     = 1 << SectorShift
	Shift          = 12
	Size           = 1 << Shift
	SectorsPerPage = Size >> SectorShift
)

// Exhausted is returned by Allocator when its page budget is used up.
var Exhausted = errs.Class("page budget exhausted")

// IndexOf returns the index of the page containing byte position
// pos, and the offset of pos within that page.
func IndexOf(pos uint64) (index uint64, offset int) {
	return pos >> Shift, int(pos & (Size - 1))
}

// Page is single fixed-size buffer owned by exactly one Store.
type Page struct {
	Index uint64

	lock util.RWMutexLocked
	data [Size]byte
}

// ReadAt copies from offset off of the page to p, and returns number
// of bytes copied.
func (self *Page) ReadAt(p []byte, off int) int {
	defer self.lock.RLocked()()
	return copy(p, self.data[off:])
}

// WriteAt copies p to offset off of the page, and returns number of
// bytes copied.
func (self *Page) WriteAt(p []byte, off int) int {
	defer self.lock.Locked()()
	return copy(self.data[off:], p)
}

// CopyFrom replaces the content of the page with that of other.
func (self *Page) CopyFrom(other *Page) {
	unlock := other.lock.RLocked()
	data := other.data
	unlock()
	defer self.lock.Locked()()
	self.data = data
}

// Allocator hands out pages within a budget shared by every Store
// using it. Limit of zero means no limit. The zero value is usable,
// and so is nil (no accounting at all).
type Allocator struct {
	Limit int64

	used util.AtomicInt
}

func (self *Allocator) alloc(index uint64) (*Page, error) {
	if self != nil {
		for {
			used := self.used.Get()
			if self.Limit > 0 && used >= self.Limit {
				return nil, Exhausted.New("%d/%d pages in use", used, self.Limit)
			}
			if self.used.CompareAndSwap(used, used+1) {
				break
			}
		}
	}
	return &Page{Index: index}, nil
}

func (self *Allocator) release(count int) {
	if self != nil && count > 0 {
		self.used.Add(-int64(count))
	}
}

// Used returns number of pages currently allocated.
func (self *Allocator) Used() int64 {
	if self == nil {
		return 0
	}
	return self.used.Get()
}
