/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr  9 11:40:02 2018 mstenber
 * Last modified: Wed Apr 11 14:31:12 2018 mstenber
 * Edit time:     62 min
 *
 */

package page

import (
	"sort"

	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/util"
)

// Store is sparse map of page index to page. It is safe for
// concurrent use; page contents have their own locks.
type Store struct {
	allocator *Allocator

	lock  util.RWMutexLocked
	pages map[uint64]*Page
}

// NewStore creates empty store that allocates its pages from
// allocator (which may be nil).
func NewStore(allocator *Allocator) *Store {
	return &Store{allocator: allocator, pages: make(map[uint64]*Page)}
}

func (self *Store) Lookup(index uint64) *Page {
	defer self.lock.RLocked()()
	return self.pages[index]
}

func (self *Store) Len() int {
	defer self.lock.RLocked()()
	return len(self.pages)
}

// InsertIfAbsent returns the page at index, allocating a zero-filled
// one if there is none. Existing page is never replaced: when
// multiple callers race on same index, first one to publish wins and
// the rest release their allocation and return the winner's page.
//
// seed (if non-nil) is called on freshly allocated page before it
// becomes visible to anyone else. created is true only for the
// caller whose page was published.
func (self *Store) InsertIfAbsent(index uint64, seed func(p *Page)) (p *Page, created bool, err error) {
	if p = self.Lookup(index); p != nil {
		return
	}
	np, err := self.allocator.alloc(index)
	if err != nil {
		return
	}
	if seed != nil {
		seed(np)
	}
	unlock := self.lock.Locked()
	p = self.pages[index]
	if p == nil {
		self.pages[index] = np
		p = np
		created = true
	}
	unlock()
	if !created {
		mlog.Printf2("page/store", "InsertIfAbsent %d lost race", index)
		self.allocator.release(1)
	}
	return
}

// Erase frees page at index, if any. Returns true if there was one.
func (self *Store) Erase(index uint64) bool {
	unlock := self.lock.Locked()
	_, ok := self.pages[index]
	delete(self.pages, index)
	unlock()
	if ok {
		self.allocator.release(1)
	}
	return ok
}

// Clear frees every page, and returns how many there were.
func (self *Store) Clear() int {
	unlock := self.lock.Locked()
	n := len(self.pages)
	self.pages = make(map[uint64]*Page)
	unlock()
	self.allocator.release(n)
	mlog.Printf2("page/store", "Clear released %d pages", n)
	return n
}

// ForEach calls cb for every page in ascending index order. The set
// of pages iterated is the one present at the time of the call; cb
// may safely use the store.
func (self *Store) ForEach(cb func(index uint64, p *Page)) {
	unlock := self.lock.RLocked()
	pages := make([]*Page, 0, len(self.pages))
	for _, p := range self.pages {
		pages = append(pages, p)
	}
	unlock()
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
	for _, p := range pages {
		cb(p.Index, p)
	}
}
