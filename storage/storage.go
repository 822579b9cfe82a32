/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sat Dec 23 15:21:34 2017 mstenber
 * Last modified: Sat Apr 14 14:40:18 2018 mstenber
 * Edit time:     96 min
 *
 */

// storage package archives write log entries persistently, so that
// crash states can be examined and reproduced after the harness run
// that produced them is long gone.
//
// Archive sits on top of a Backend (see storage/factory for the
// available ones) and codec.Codec; the payloads are encoded with
// the codec, using the encoded entry metadata as additional data.
package storage

import (
	"bytes"

	"github.com/fingon/go-cowbrd/codec"
	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/minio/sha256-simd"
	"github.com/zeebo/errs"
)

var (
	Error = errs.Class("storage")

	// Corrupt: record does not decode, or its payload does not
	// match its digest.
	Corrupt = errs.Class("corrupt record")
)

// Cursor is the consuming side of the write log, implemented both
// by *wrapper.Log and by the remote connector.
type Cursor interface {
	GetMeta() (wrapper.Meta, error)
	GetData(buf []byte) (int, error)
	Advance() error
}

var _ Cursor = &wrapper.Log{}

type Archive struct {
	Backend Backend

	// Codec encodes payloads; nil stores them as-is.
	Codec codec.Codec
}

func (self Archive) Init() *Archive {
	if self.Codec == nil {
		self.Codec = &codec.CodecChain{}
	}
	return &self
}

func (self *Archive) Close() {
	self.Backend.Close()
}

// Len returns the number of archived entries.
func (self *Archive) Len() int {
	return self.Backend.Count()
}

func (self *Archive) Clear() error {
	return self.Backend.Clear()
}

// Store archives e, returning the backend sequence number.
func (self *Archive) Store(e *wrapper.Entry) (uint64, error) {
	r := Record{Meta: e.Meta}
	ad, err := r.Meta.MarshalMsg(nil)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	digest := sha256.Sum256(e.Data)
	r.Digest = digest[:]
	if r.Payload, err = self.Codec.EncodeBytes(e.Data, ad); err != nil {
		return 0, Error.Wrap(err)
	}
	b, err := r.MarshalMsg(nil)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	seq, err := self.Backend.Append(b)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	mlog.Printf2("storage/storage", "Store %v as #%d (%d b)", &e.Meta, seq, len(b))
	return seq, nil
}

func (self *Archive) decode(b []byte) (*wrapper.Entry, error) {
	var r Record
	if _, err := r.UnmarshalMsg(b); err != nil {
		return nil, Corrupt.Wrap(err)
	}
	ad, err := r.Meta.MarshalMsg(nil)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	data, err := self.Codec.DecodeBytes(r.Payload, ad)
	if err != nil {
		return nil, Corrupt.Wrap(err)
	}
	digest := sha256.Sum256(data)
	if !bytes.Equal(digest[:], r.Digest) {
		return nil, Corrupt.New("%v: digest mismatch", &r.Meta)
	}
	e := &wrapper.Entry{Meta: r.Meta}
	if len(data) > 0 {
		e.Data = data
	}
	return e, nil
}

// Load calls cb for every archived entry in order, after verifying
// it. Error from cb stops the iteration and is returned as-is.
func (self *Archive) Load(cb func(e *wrapper.Entry) error) error {
	var cbErr error
	err := self.Backend.Iterate(func(seq uint64, b []byte) error {
		e, err := self.decode(b)
		if err != nil {
			mlog.Printf2("storage/storage", "Load #%d failed: %v", seq, err)
			return err
		}
		cbErr = cb(e)
		return cbErr
	})
	if err != nil && err == cbErr {
		return err
	}
	if err != nil && !Corrupt.Has(err) {
		err = Error.Wrap(err)
	}
	return err
}

// Entries returns every archived entry.
func (self *Archive) Entries() (l []*wrapper.Entry, err error) {
	err = self.Load(func(e *wrapper.Entry) error {
		l = append(l, e)
		return nil
	})
	return
}

// Drain consumes the cursor, archiving every entry it yields, until
// the cursor runs out of entries. Returns the number of entries
// archived.
func (self *Archive) Drain(c Cursor) (n int, err error) {
	for {
		var meta wrapper.Meta
		meta, err = c.GetMeta()
		if device.NoData.Has(err) {
			mlog.Printf2("storage/storage", "Drain done, %d entries", n)
			return n, nil
		}
		if err != nil {
			return
		}
		e := &wrapper.Entry{Meta: meta}
		if meta.Flags&wrapper.FlagWrite != 0 {
			e.Data = make([]byte, meta.Size)
			var got int
			if got, err = c.GetData(e.Data); err != nil {
				return
			}
			e.Data = e.Data[:got]
		}
		if _, err = self.Store(e); err != nil {
			return
		}
		n++
		if err = c.Advance(); err != nil {
			return
		}
	}
}
