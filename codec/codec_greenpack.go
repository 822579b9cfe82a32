/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:42:58 2017 mstenber
 * Last modified: Sat Apr 14 11:02:40 2018 mstenber
 * Edit time:     9 min
 *
 */

package codec

import "github.com/zeebo/errs"

var UnknownCompression = errs.New("unknown compression type")

type EncryptedData struct {
	Nonce []byte `zid:"0"`

	// EncryptedData is AES GCM sealed output of the next codec.
	EncryptedData []byte `zid:"1"`
}

type CompressionType byte

const (
	CompressionType_UNSET CompressionType = iota

	// The data has not been compressed.
	CompressionType_PLAIN

	// The data is compressed with Snappy.
	CompressionType_SNAPPY
)

type CompressedData struct {
	CompressionType CompressionType `zid:"0"`
	RawData         []byte          `zid:"1"`
}
