/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Sun Dec 24 16:42:12 2017 mstenber
 * Last modified: Sat Apr 14 11:20:09 2018 mstenber
 * Edit time:     83 min
 *
 */

// codec package transforms log payloads on their way to and from the
// archive: compressing them, and optionally encrypting them so that
// the archive is useless without the password.
//
// Each codec takes also additionalData, which is authenticated but
// not stored (the archive uses the encoded entry metadata), so
// payload cannot be moved from one entry to another undetected.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"log"

	"github.com/golang/snappy"
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/pbkdf2"
)

type Codec interface {
	DecodeBytes(data, additionalData []byte) (ret []byte, err error)
	EncodeBytes(data, additionalData []byte) (ret []byte, err error)
}

// DefaultIterations is the PBKDF2 iteration count used for archive
// keys.
const DefaultIterations = 4096

// EncryptingCodec seals data with AES-256-GCM, using key derived from
// password.
type EncryptingCodec struct {
	gcm cipher.AEAD
}

func (self EncryptingCodec) Init(password, salt []byte, iter int) *EncryptingCodec {
	key := pbkdf2.Key(password, salt, iter, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		log.Panic(err)
	}
	self.gcm, err = cipher.NewGCM(block)
	if err != nil {
		log.Panic(err)
	}
	return &self
}

func (self *EncryptingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	var ed EncryptedData
	if _, err = ed.UnmarshalMsg(data); err != nil {
		return
	}
	return self.gcm.Open(nil, ed.Nonce, ed.EncryptedData, additionalData)
}

func (self *EncryptingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	nonce := make([]byte, self.gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return
	}
	ed := EncryptedData{Nonce: nonce,
		EncryptedData: self.gcm.Seal(nil, nonce, data, additionalData)}
	return ed.MarshalMsg(nil)
}

// CompressingCodec compresses with snappy. If that does not make
// the data smaller, it is stored as-is at cost of a type byte.
//
// Block payloads are often whole zero pages or repeated patterns, so
// this typically pays off.
type CompressingCodec struct {
}

func (self *CompressingCodec) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	var cd CompressedData
	if _, err = cd.UnmarshalMsg(data); err != nil {
		return
	}
	switch cd.CompressionType {
	case CompressionType_PLAIN:
		ret = cd.RawData
	case CompressionType_SNAPPY:
		ret, err = snappy.Decode(nil, cd.RawData)
	default:
		err = UnknownCompression
	}
	return
}

func (self *CompressingCodec) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	cd := CompressedData{CompressionType: CompressionType_SNAPPY,
		RawData: snappy.Encode(nil, data)}
	if len(cd.RawData) >= len(data) {
		cd.CompressionType = CompressionType_PLAIN
		cd.RawData = data
	}
	return cd.MarshalMsg(nil)
}

// CodecChain applies multiple codecs in sequence.
type CodecChain struct {
	codecs, reverseCodecs []Codec
}

// Init initializes the codec chain. The codecs are given in
// decoding order, so e.g. encrypting one should be given before
// compressing one.
func (self CodecChain) Init(codecs ...Codec) *CodecChain {
	self.codecs = codecs
	self.reverseCodecs = make([]Codec, len(codecs))
	for i, c := range codecs {
		self.reverseCodecs[len(codecs)-i-1] = c
	}
	return &self
}

func (self *CodecChain) DecodeBytes(data, additionalData []byte) (ret []byte, err error) {
	ret = data
	for _, c := range self.codecs {
		if ret, err = c.DecodeBytes(ret, additionalData); err != nil {
			return
		}
	}
	return
}

func (self *CodecChain) EncodeBytes(data, additionalData []byte) (ret []byte, err error) {
	ret = data
	for _, c := range self.reverseCodecs {
		if ret, err = c.EncodeBytes(ret, additionalData); err != nil {
			return
		}
	}
	return
}

// New returns the codec used by the archive: compression always,
// and encryption if password is given.
func New(password, salt []byte) Codec {
	comp := &CompressingCodec{}
	if len(password) == 0 {
		return comp
	}
	enc := EncryptingCodec{}.Init(password, salt, DefaultIterations)
	return CodecChain{}.Init(enc, comp)
}
