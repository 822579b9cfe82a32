/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Apr 14 10:40:31 2018 mstenber
 * Last modified: Sat Apr 14 11:01:12 2018 mstenber
 * Edit time:     14 min
 *
 */

package codec

import "github.com/glycerine/greenpack/msgp"

// Both envelopes are 2-element msgpack arrays in zid order.

func readHeader(bts []byte) ([]byte, error) {
	var nbs msgp.NilBitsStack
	sz, bts, err := nbs.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	if sz != 2 {
		return bts, msgp.ArrayError{Wanted: 2, Got: sz}
	}
	return bts, nil
}

func (z *EncryptedData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendBytes(o, z.Nonce)
	o = msgp.AppendBytes(o, z.EncryptedData)
	return
}

func (z *EncryptedData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var nbs msgp.NilBitsStack
	if bts, err = readHeader(bts); err != nil {
		return
	}
	if z.Nonce, bts, err = nbs.ReadBytesBytes(bts, z.Nonce); err != nil {
		return
	}
	if z.EncryptedData, bts, err = nbs.ReadBytesBytes(bts, z.EncryptedData); err != nil {
		return
	}
	o = bts
	return
}

func (z *EncryptedData) Msgsize() int {
	return msgp.ArrayHeaderSize + 2*msgp.BytesPrefixSize + len(z.Nonce) + len(z.EncryptedData)
}

func (z *CompressedData) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, z.Msgsize())
	o = msgp.AppendArrayHeader(o, 2)
	o = msgp.AppendByte(o, byte(z.CompressionType))
	o = msgp.AppendBytes(o, z.RawData)
	return
}

func (z *CompressedData) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var nbs msgp.NilBitsStack
	if bts, err = readHeader(bts); err != nil {
		return
	}
	var ct byte
	if ct, bts, err = nbs.ReadByteBytes(bts); err != nil {
		return
	}
	z.CompressionType = CompressionType(ct)
	if z.RawData, bts, err = nbs.ReadBytesBytes(bts, z.RawData); err != nil {
		return
	}
	o = bts
	return
}

func (z *CompressedData) Msgsize() int {
	return msgp.ArrayHeaderSize + msgp.ByteSize + msgp.BytesPrefixSize + len(z.RawData)
}
