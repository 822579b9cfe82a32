/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Apr 13 09:12:20 2018 mstenber
 * Last modified: Fri Apr 13 09:40:51 2018 mstenber
 * Edit time:     18 min
 *
 */

package wrapper

import "github.com/glycerine/greenpack/msgp"

// Meta is encoded as fixed 5-element msgpack array; the field order
// is part of the archive format, so only ever append.

const metaFields = 5

func (z *Meta) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, metaFields)
	o = msgp.AppendUint32(o, uint32(z.Flags))
	o = msgp.AppendUint64(o, z.Sector)
	o = msgp.AppendUint32(o, z.Size)
	o = msgp.AppendInt64(o, z.Time)
	o = msgp.AppendUint64(o, z.Seq)
	return
}

func (z *Meta) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var nbs msgp.NilBitsStack
	var sz uint32
	sz, bts, err = nbs.ReadArrayHeaderBytes(bts)
	if err != nil {
		return
	}
	if sz != metaFields {
		err = msgp.ArrayError{Wanted: metaFields, Got: sz}
		return
	}
	var flags uint32
	if flags, bts, err = nbs.ReadUint32Bytes(bts); err != nil {
		return
	}
	z.Flags = OpFlags(flags)
	if z.Sector, bts, err = nbs.ReadUint64Bytes(bts); err != nil {
		return
	}
	if z.Size, bts, err = nbs.ReadUint32Bytes(bts); err != nil {
		return
	}
	if z.Time, bts, err = nbs.ReadInt64Bytes(bts); err != nil {
		return
	}
	if z.Seq, bts, err = nbs.ReadUint64Bytes(bts); err != nil {
		return
	}
	o = bts
	return
}

func (z *Meta) Msgsize() int {
	return msgp.ArrayHeaderSize + 2*msgp.Uint32Size + 2*msgp.Uint64Size + msgp.Int64Size
}
