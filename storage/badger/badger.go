/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 23 15:10:01 2017 mstenber
 * Last modified: Sat Apr 14 15:40:02 2018 mstenber
 * Edit time:     176 min
 *
 */

package badger

import (
	"github.com/dgraph-io/badger"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/util"
)

// badgerBackend stores record seq as key prefix 'r' + big-endian
// seq, so that the key order is the append order.
type badgerBackend struct {
	storage.DirectoryBackendBase

	db *badger.DB

	// lock protects seq and count
	lock  util.MutexLocked
	seq   uint64
	count int
}

var _ storage.Backend = &badgerBackend{}

var recordPrefix = []byte("r")

func NewBadgerBackend() storage.Backend {
	return &badgerBackend{}
}

func recordKey(seq uint64) []byte {
	return util.ConcatBytes(recordPrefix, util.Uint64Bytes(seq))
}

func (self *badgerBackend) Init(config storage.BackendConfiguration) error {
	if err := self.DirectoryBackendBase.Init(config); err != nil {
		return err
	}
	opts := badger.DefaultOptions
	opts.Dir = self.Dir
	opts.ValueDir = self.Dir
	db, err := badger.Open(opts)
	if err != nil {
		return storage.Error.Wrap(err)
	}
	self.db = db
	// continue numbering after whatever is there already
	err = self.iterate(false, func(seq uint64, v []byte) error {
		self.seq = seq
		self.count++
		return nil
	})
	if err != nil {
		db.Close()
		return storage.Error.Wrap(err)
	}
	mlog.Printf2("storage/badger/badger", "bad.Init %s: %d records", self.Dir, self.count)
	return nil
}

func (self *badgerBackend) Close() {
	self.db.Close()
}

func (self *badgerBackend) Append(record []byte) (uint64, error) {
	defer self.lock.Locked()()
	seq := self.seq + 1
	err := self.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(seq), record)
	})
	mlog.Printf2("storage/badger/badger", "bad.Append #%d (%d b): %v", seq, len(record), err)
	if err != nil {
		return 0, err
	}
	self.seq = seq
	self.count++
	return seq, nil
}

func (self *badgerBackend) iterate(values bool, cb func(seq uint64, v []byte) error) error {
	return self.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = values
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			item := it.Item()
			seq := util.BytesUint64(item.Key()[len(recordPrefix):])
			var v []byte
			if values {
				var err error
				if v, err = item.ValueCopy(nil); err != nil {
					return err
				}
			}
			if err := cb(seq, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (self *badgerBackend) Iterate(cb func(seq uint64, record []byte) error) error {
	return self.iterate(true, cb)
}

func (self *badgerBackend) Count() int {
	defer self.lock.Locked()()
	return self.count
}

func (self *badgerBackend) Clear() error {
	defer self.lock.Locked()()
	var keys [][]byte
	err := self.iterate(false, func(seq uint64, v []byte) error {
		keys = append(keys, recordKey(seq))
		return nil
	})
	if err != nil {
		return err
	}
	mlog.Printf2("storage/badger/badger", "bad.Clear %d keys", len(keys))
	for _, k := range keys {
		err := self.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(k)
		})
		if err != nil {
			return err
		}
	}
	self.seq = 0
	self.count = 0
	return nil
}
