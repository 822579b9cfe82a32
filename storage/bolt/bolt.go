/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 22:49:15 2018 mstenber
 * Last modified: Sat Apr 14 15:12:30 2018 mstenber
 * Edit time:     51 min
 *
 */

package bolt

import (
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/util"
	bbolt "go.etcd.io/bbolt"
)

const dbName = "bbolt.db"

var recordsKey = []byte("records")

// boltBackend keeps the records in single bucket, keyed by
// big-endian bucket sequence number.
type boltBackend struct {
	storage.DirectoryBackendBase

	db *bbolt.DB
}

var _ storage.Backend = &boltBackend{}

func NewBoltBackend() storage.Backend {
	return &boltBackend{}
}

func createBucket(tx *bbolt.Tx) error {
	_, err := tx.CreateBucketIfNotExists(recordsKey)
	return err
}

func (self *boltBackend) Init(config storage.BackendConfiguration) error {
	if err := self.DirectoryBackendBase.Init(config); err != nil {
		return err
	}
	db, err := bbolt.Open(self.Path(dbName), 0600, nil)
	if err != nil {
		return storage.Error.Wrap(err)
	}
	if err = db.Update(createBucket); err != nil {
		db.Close()
		return storage.Error.Wrap(err)
	}
	self.db = db
	return nil
}

func (self *boltBackend) Close() {
	self.db.Close()
}

func (self *boltBackend) Append(record []byte) (seq uint64, err error) {
	err = self.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(recordsKey)
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(util.Uint64Bytes(seq), record)
	})
	mlog.Printf2("storage/bolt/bolt", "bbolt.Append #%d (%d b): %v", seq, len(record), err)
	return
}

func (self *boltBackend) Iterate(cb func(seq uint64, record []byte) error) error {
	return self.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(recordsKey).ForEach(func(k, v []byte) error {
			return cb(util.BytesUint64(k), v)
		})
	})
}

func (self *boltBackend) Count() (n int) {
	self.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(recordsKey).Stats().KeyN
		return nil
	})
	return
}

func (self *boltBackend) Clear() error {
	mlog.Printf2("storage/bolt/bolt", "bbolt.Clear")
	return self.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(recordsKey); err != nil {
			return err
		}
		return createBucket(tx)
	})
}
