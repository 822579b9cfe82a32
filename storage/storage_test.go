/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Mon Dec 25 01:08:16 2017 mstenber
 * Last modified: Sat Apr 14 17:20:48 2018 mstenber
 * Edit time:     88 min
 *
 */

package storage_test

import (
	"testing"

	"github.com/fingon/go-cowbrd/codec"
	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/page"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/storage/inmemory"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/stvp/assert"
)

const capacity = 256

func newArchive() *storage.Archive {
	return storage.Archive{Backend: inmemory.NewInMemoryBackend(),
		Codec: codec.New([]byte("pw"), []byte("salt"))}.Init()
}

// logged returns device wrapped with logging on.
func logged() (*device.Device, *wrapper.Wrapper) {
	d := device.New(device.Config{Name: "cow_ram0", CapacitySectors: capacity})
	w := wrapper.New(d, nil)
	w.SetLogging(true)
	return d, w
}

func fill(c byte, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return b
}

func TestDrain(t *testing.T) {
	t.Parallel()
	_, w := logged()
	assert.Nil(t, device.WriteAt(w, 0, []byte("hello")))
	assert.Nil(t, device.Flush(w))
	w.Log().Checkpoint()

	a := newArchive()
	n, err := a.Drain(w.Log())
	assert.Nil(t, err)
	assert.Equal(t, n, 4)
	assert.Equal(t, a.Len(), 4)
	assert.Equal(t, w.Log().Unread(), 0)

	// drained cursor yields nothing more
	n, err = a.Drain(w.Log())
	assert.Nil(t, err)
	assert.Equal(t, n, 0)

	entries, err := a.Entries()
	assert.Nil(t, err)
	assert.Equal(t, len(entries), 4)
	assert.Equal(t, string(entries[1].Data), "hello")
	assert.Equal(t, entries[3].Sector, uint64(1))
	assert.True(t, entries[3].IsCheckpoint())

	assert.Nil(t, a.Clear())
	assert.Equal(t, a.Len(), 0)
}

func TestLoadStops(t *testing.T) {
	t.Parallel()
	a := newArchive()
	for i := 0; i < 3; i++ {
		_, err := a.Store(&wrapper.Entry{Meta: wrapper.Meta{Flags: wrapper.FlagFlush}})
		assert.Nil(t, err)
	}
	stop := device.NotFound.New("stop")
	n := 0
	err := a.Load(func(e *wrapper.Entry) error {
		n++
		return stop
	})
	assert.Equal(t, err, stop)
	assert.Equal(t, n, 1)
}

func TestCorruptRecord(t *testing.T) {
	t.Parallel()
	be := inmemory.NewInMemoryBackend()
	_, err := be.Append([]byte("garbage"))
	assert.Nil(t, err)
	a := storage.Archive{Backend: be}.Init()
	_, err = a.Entries()
	assert.True(t, storage.Corrupt.Has(err))

	// payload not matching its digest
	r := storage.Record{Meta: wrapper.Meta{Flags: wrapper.FlagWrite, Size: 1},
		Digest: make([]byte, 32), Payload: []byte("x")}
	b, err := r.MarshalMsg(nil)
	assert.Nil(t, err)
	assert.Nil(t, be.Clear())
	_, err = be.Append(b)
	assert.Nil(t, err)
	_, err = a.Entries()
	assert.True(t, storage.Corrupt.Has(err))
}

func TestReplay(t *testing.T) {
	t.Parallel()
	d, w := logged()
	assert.Nil(t, device.WriteAt(w, 0, fill('a', page.Size)))
	assert.Nil(t, device.WriteAt(w, 8, fill('b', 2*page.Size)))
	assert.Equal(t, w.Log().Checkpoint(), uint64(1))
	fp1 := d.Fingerprint()
	assert.Nil(t, device.Discard(w, 8, page.Size))
	assert.Nil(t, w.Submit(&device.Request{Op: device.OpWriteZeroes,
		Sector: 1, Length: 512}))
	assert.Equal(t, w.Log().Checkpoint(), uint64(2))
	fp2 := d.Fingerprint()
	assert.True(t, fp1 != fp2)

	a := newArchive()
	_, err := a.Drain(w.Log())
	assert.Nil(t, err)
	entries, err := a.Entries()
	assert.Nil(t, err)

	check := func(checkpoint uint64, ops int, fp uint64) {
		d2 := device.New(device.Config{CapacitySectors: capacity})
		n, err := storage.Replay(entries, d2, checkpoint)
		assert.Nil(t, err)
		assert.Equal(t, n, ops)
		assert.Equal(t, d2.Fingerprint(), fp)
	}
	check(0, 0, device.New(device.Config{}).Fingerprint())
	check(1, 2, fp1)
	check(2, 4, fp2)
	check(storage.AllEntries, 4, fp2)

	d3 := device.New(device.Config{CapacitySectors: capacity})
	_, err = storage.Replay(entries, d3, 3)
	assert.True(t, device.NotFound.Has(err))
	assert.Equal(t, d3.Pages(), 0)

	// replay stops at the first failing operation
	d4 := device.New(device.Config{CapacitySectors: capacity})
	assert.Nil(t, d4.Freeze())
	n, err := storage.Replay(entries, d4, 1)
	assert.True(t, device.NotWritable.Has(err))
	assert.Equal(t, n, 0)
}
