/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 17 22:20:08 2017 mstenber
 * Last modified: Sat Apr 14 15:02:45 2018 mstenber
 * Edit time:     80 min
 *
 */

package inmemory

import (
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/util"
)

// inMemoryBackend keeps the records in a slice; record seq is its
// index + 1.
type inMemoryBackend struct {
	records [][]byte
	lock    util.MutexLocked
}

var _ storage.Backend = &inMemoryBackend{}

func NewInMemoryBackend() storage.Backend {
	return &inMemoryBackend{}
}

func (self *inMemoryBackend) Init(config storage.BackendConfiguration) error {
	return nil
}

func (self *inMemoryBackend) Close() {
}

func (self *inMemoryBackend) Append(record []byte) (uint64, error) {
	defer self.lock.Locked()()
	self.records = append(self.records, append([]byte(nil), record...))
	mlog.Printf2("storage/inmemory", "im.Append #%d", len(self.records))
	return uint64(len(self.records)), nil
}

func (self *inMemoryBackend) Iterate(cb func(seq uint64, record []byte) error) error {
	unlock := self.lock.Locked()
	records := self.records
	unlock()
	for i, r := range records {
		if err := cb(uint64(i+1), r); err != nil {
			return err
		}
	}
	return nil
}

func (self *inMemoryBackend) Count() int {
	defer self.lock.Locked()()
	return len(self.records)
}

func (self *inMemoryBackend) Clear() error {
	defer self.lock.Locked()()
	self.records = nil
	return nil
}
