/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Apr 12 11:02:40 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     29 min
 *
 */

package wrapper

import (
	"bytes"
	"fmt"
	"runtime"
	"testing"

	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/page"
	"github.com/fingon/go-cowbrd/util"
	"github.com/stvp/assert"
)

func newWrapped() (*device.Device, *Wrapper) {
	d := device.New(device.Config{Name: "cow_ram0", CapacitySectors: 1024})
	w := New(d, nil)
	w.Now = fixedClock
	return d, w
}

func TestWrapperPassThrough(t *testing.T) {
	t.Parallel()
	d, w := newWrapped()
	assert.Equal(t, w.Name(), "cow_ram0_wrapper")
	assert.Equal(t, w.CapacitySectors(), d.CapacitySectors())
	assert.False(t, w.Logging())

	assert.Nil(t, device.WriteAt(w, 0, []byte("hello")))
	b, err := device.ReadAt(d, 0, 5)
	assert.Nil(t, err)
	assert.Equal(t, string(b), "hello")
	// logging off: only the initial checkpoint
	assert.Equal(t, w.Log().Len(), 1)
}

func TestWrapperLogsModifications(t *testing.T) {
	t.Parallel()
	_, w := newWrapped()
	w.SetLogging(true)

	buf := []byte("AAAA")
	assert.Nil(t, device.WriteAt(w, 2, buf))
	// caller reusing its buffer must not affect the log
	copy(buf, "ZZZZ")
	_, err := device.ReadAt(w, 0, 512)
	assert.Nil(t, err)
	assert.Nil(t, device.Discard(w, 8, page.Size))
	assert.Nil(t, w.Submit(&device.Request{Op: device.OpWriteZeroes,
		Sector: 16, Length: 512, Flags: device.FlagFUA}))
	assert.Nil(t, w.Submit(&device.Request{Op: device.OpSecureErase,
		Sector: 24, Length: page.Size}))
	assert.Nil(t, device.Flush(w))
	assert.Equal(t, w.Log().Checkpoint(), uint64(1))

	entries := w.Log().Entries()
	var got []string
	for _, e := range entries[1:] {
		got = append(got, e.Meta.String())
	}
	assert.Equal(t, got, []string{
		"#1 write@2+4",
		"#2 discard@8+4096",
		"#3 write-zeroes|fua@16+512",
		"#4 secure-erase@24+4096",
		"#5 flush@0+0",
		"#6 checkpoint 1",
	})
	assert.Equal(t, string(entries[1].Data), "AAAA")
	for _, e := range entries[2:] {
		assert.Equal(t, len(e.Data), 0)
	}
	assert.Equal(t, entries[1].Time, fixedClock().UnixNano())
}

func TestWrapperLogsFlaggedReads(t *testing.T) {
	t.Parallel()
	_, w := newWrapped()
	w.SetLogging(true)
	for _, flags := range []device.Flags{0, device.FlagSync, device.FlagFUA, device.FlagPreflush} {
		assert.Nil(t, w.Submit(&device.Request{Op: device.OpRead, Sector: 4,
			Length: 512, Flags: flags}))
	}
	entries := w.Log().Entries()
	assert.Equal(t, len(entries), 3)
	assert.Equal(t, entries[1].Meta.String(), "#1 fua@4+512")
	assert.Equal(t, entries[2].Meta.String(), "#2 flush@4+512")
	assert.Equal(t, len(entries[1].Data), 0)
	assert.Equal(t, entries[1].Request().Op, device.OpFlush)
}

func TestWrapperLogsFailedRequests(t *testing.T) {
	t.Parallel()
	d, w := newWrapped()
	w.SetLogging(true)
	assert.Nil(t, d.Freeze())
	err := device.WriteAt(w, 0, []byte("x"))
	assert.True(t, device.NotWritable.Has(err))
	assert.Equal(t, w.Log().Len(), 2)
}

func TestEntryRequest(t *testing.T) {
	t.Parallel()
	reqs := []*device.Request{
		{Op: device.OpWrite, Sector: 3, Length: 2, Segments: [][]byte{[]byte("a"), []byte("b")},
			Flags: device.FlagPreflush | device.FlagFUA},
		{Op: device.OpDiscard, Sector: 8, Length: 4096, Flags: device.FlagSync},
		{Op: device.OpSecureErase, Sector: 8, Length: 4096},
		{Op: device.OpWriteZeroes, Sector: 9, Length: 512, Flags: device.FlagMeta},
		{Op: device.OpFlush, Flags: device.FlagPreflush},
	}
	for _, req := range reqs {
		e := NewEntry(req, fixedClock())
		req2 := e.Request()
		assert.Equal(t, req2.Op, req.Op)
		assert.Equal(t, req2.Sector, req.Sector)
		assert.Equal(t, req2.Length, req.Length)
		// flush op carries preflush implicitly
		if req.Op != device.OpFlush {
			assert.Equal(t, req2.Flags, req.Flags)
		}
		assert.Equal(t, req2.Data(), req.Data())
	}
	assert.Nil(t, (&Entry{Meta: Meta{Flags: FlagCheckpoint}}).Request())
}

func TestWrapperConcurrentAppend(t *testing.T) {
	t.Parallel()
	_, w := newWrapped()
	w.SetLogging(true)
	var wg util.SimpleWaitGroup
	n := 32
	for i := 0; i < n; i++ {
		i := i
		wg.Go(func() {
			data := []byte(fmt.Sprintf("%04d", i))
			assert.Nil(t, device.WriteAt(w, uint64(i), data))
		})
	}
	wg.Wait()
	entries := w.Log().Entries()
	assert.Equal(t, len(entries), n+1)
	seen := map[string]bool{}
	for i, e := range entries[1:] {
		assert.Equal(t, e.Seq, uint64(i+1))
		assert.Equal(t, string(e.Data), fmt.Sprintf("%04d", e.Sector))
		seen[string(e.Data)] = true
	}
	assert.Equal(t, len(seen), n)
}

func TestWrapperReaderSeesCompleteEntries(t *testing.T) {
	t.Parallel()
	_, w := newWrapped()
	w.SetLogging(true)
	l := w.Log()
	writers := 8
	perWriter := 16
	total := writers * perWriter

	done := make(chan error)
	go func() {
		buf := make([]byte, page.Size)
		seen := 0
		for seen < total {
			m, err := l.GetMeta()
			if device.NoData.Has(err) {
				runtime.Gosched()
				continue
			}
			if err != nil {
				done <- err
				return
			}
			if m.Flags&FlagWrite != 0 {
				n, err := l.GetData(buf)
				if err != nil {
					done <- err
					return
				}
				want := bytes.Repeat([]byte{byte(m.Sector)}, int(m.Size))
				if n != int(m.Size) || !bytes.Equal(buf[:n], want) {
					done <- fmt.Errorf("incomplete entry %v: %d bytes", m, n)
					return
				}
				seen++
			}
			if err = l.Advance(); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	var wg util.SimpleWaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Go(func() {
			for j := 0; j < perWriter; j++ {
				sector := uint64(i*perWriter + j)
				size := 512 * (1 + j%8)
				data := bytes.Repeat([]byte{byte(sector)}, size)
				assert.Nil(t, device.WriteAt(w, sector, data))
			}
		})
	}
	wg.Wait()
	assert.Nil(t, <-done)
	assert.Equal(t, l.Unread(), 0)
}
