/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Apr 14 12:05:40 2018 mstenber
 * Last modified: Sat Apr 14 12:49:33 2018 mstenber
 * Edit time:     26 min
 *
 */

package storage

import (
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/glycerine/greenpack/msgp"
)

// Record is how single log entry is persisted: the metadata in
// clear, the SHA-256 digest of the original payload, and the payload
// as encoded by the archive codec.
type Record struct {
	Meta    wrapper.Meta `zid:"0"`
	Digest  []byte       `zid:"1"`
	Payload []byte       `zid:"2"`
}

const recordFields = 3

func (z *Record) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, recordFields)
	if o, err = z.Meta.MarshalMsg(o); err != nil {
		return
	}
	o = msgp.AppendBytes(o, z.Digest)
	o = msgp.AppendBytes(o, z.Payload)
	return
}

func (z *Record) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var nbs msgp.NilBitsStack
	var sz uint32
	if sz, bts, err = nbs.ReadArrayHeaderBytes(bts); err != nil {
		return
	}
	if sz != recordFields {
		err = msgp.ArrayError{Wanted: recordFields, Got: sz}
		return
	}
	if bts, err = z.Meta.UnmarshalMsg(bts); err != nil {
		return
	}
	if z.Digest, bts, err = nbs.ReadBytesBytes(bts, nil); err != nil {
		return
	}
	if z.Payload, bts, err = nbs.ReadBytesBytes(bts, nil); err != nil {
		return
	}
	o = bts
	return
}

func (z *Record) Msgsize() int {
	return msgp.ArrayHeaderSize + z.Meta.Msgsize() +
		2*msgp.BytesPrefixSize + len(z.Digest) + len(z.Payload)
}
