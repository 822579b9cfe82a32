/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr  9 13:10:55 2018 mstenber
 * Last modified: Wed Apr 11 14:44:03 2018 mstenber
 * Edit time:     35 min
 *
 */

package page

import (
	"testing"

	"github.com/fingon/go-cowbrd/util"
	"github.com/stvp/assert"
)

func TestIndexOf(t *testing.T) {
	t.Parallel()
	idx, off := IndexOf(0)
	assert.Equal(t, idx, uint64(0))
	assert.Equal(t, off, 0)
	idx, off = IndexOf(9 * SectorSize)
	assert.Equal(t, idx, uint64(1))
	assert.Equal(t, off, SectorSize)
	idx, off = IndexOf(3*Size - 1)
	assert.Equal(t, idx, uint64(2))
	assert.Equal(t, off, Size-1)
}

func TestPageReadWrite(t *testing.T) {
	t.Parallel()
	p := &Page{}
	assert.Equal(t, p.WriteAt([]byte("abc"), Size-2), 2)
	buf := make([]byte, 4)
	assert.Equal(t, p.ReadAt(buf, Size-4), 4)
	assert.Equal(t, buf, []byte{0, 0, 'a', 'b'})

	p2 := &Page{}
	p2.CopyFrom(p)
	assert.Equal(t, p2.ReadAt(buf, Size-4), 4)
	assert.Equal(t, buf, []byte{0, 0, 'a', 'b'})
}

func TestStoreBasics(t *testing.T) {
	t.Parallel()
	a := &Allocator{}
	s := NewStore(a)
	assert.Nil(t, s.Lookup(3))

	p, created, err := s.InsertIfAbsent(3, nil)
	assert.Nil(t, err)
	assert.True(t, created)
	assert.Equal(t, p.Index, uint64(3))
	assert.True(t, s.Lookup(3) == p)
	buf := make([]byte, Size)
	p.ReadAt(buf, 0)
	assert.True(t, util.IsZero(buf))

	// idempotent; seed is not called for existing page
	p2, created, err := s.InsertIfAbsent(3, func(*Page) { t.Fatal("seeded") })
	assert.Nil(t, err)
	assert.False(t, created)
	assert.True(t, p2 == p)
	assert.Equal(t, a.Used(), int64(1))

	assert.True(t, s.Erase(3))
	assert.False(t, s.Erase(3))
	assert.Nil(t, s.Lookup(3))
	assert.Equal(t, a.Used(), int64(0))
}

func TestStoreSeed(t *testing.T) {
	t.Parallel()
	s := NewStore(nil)
	p, created, err := s.InsertIfAbsent(1, func(p *Page) {
		p.WriteAt([]byte("seeded"), 0)
	})
	assert.Nil(t, err)
	assert.True(t, created)
	buf := make([]byte, 6)
	p.ReadAt(buf, 0)
	assert.Equal(t, string(buf), "seeded")
}

func TestStoreClearForEach(t *testing.T) {
	t.Parallel()
	a := &Allocator{}
	s := NewStore(a)
	for _, i := range []uint64{7, 1, 5, 3} {
		_, _, err := s.InsertIfAbsent(i, nil)
		assert.Nil(t, err)
	}
	var seen []uint64
	s.ForEach(func(index uint64, p *Page) {
		assert.Equal(t, index, p.Index)
		seen = append(seen, index)
	})
	assert.Equal(t, seen, []uint64{1, 3, 5, 7})
	assert.Equal(t, s.Len(), 4)
	assert.Equal(t, s.Clear(), 4)
	assert.Equal(t, s.Len(), 0)
	assert.Equal(t, a.Used(), int64(0))
}

func TestAllocatorLimit(t *testing.T) {
	t.Parallel()
	a := &Allocator{Limit: 2}
	s1 := NewStore(a)
	s2 := NewStore(a)
	_, _, err := s1.InsertIfAbsent(0, nil)
	assert.Nil(t, err)
	_, _, err = s2.InsertIfAbsent(0, nil)
	assert.Nil(t, err)
	_, _, err = s1.InsertIfAbsent(1, nil)
	assert.True(t, Exhausted.Has(err))
	assert.Nil(t, s1.Lookup(1))
	s2.Clear()
	_, _, err = s1.InsertIfAbsent(1, nil)
	assert.Nil(t, err)
	assert.Equal(t, a.Used(), int64(2))
}

func TestStoreConcurrentInsert(t *testing.T) {
	t.Parallel()
	const goroutines = 64
	a := &Allocator{}
	s := NewStore(a)
	var wg util.SimpleWaitGroup
	pages := make(chan *Page, goroutines)
	var createdCount util.AtomicInt
	for i := 0; i < goroutines; i++ {
		i := i
		wg.Go(func() {
			p, created, err := s.InsertIfAbsent(42, func(p *Page) {
				p.WriteAt([]byte{byte(i)}, 0)
			})
			if err != nil {
				t.Error(err)
				return
			}
			if created {
				createdCount.Add(1)
			}
			pages <- p
		})
	}
	wg.Wait()
	close(pages)
	winner := s.Lookup(42)
	for p := range pages {
		assert.True(t, p == winner)
	}
	assert.Equal(t, createdCount.Get(), int64(1))
	assert.Equal(t, a.Used(), int64(1))

	// the winner's seed is what is visible
	buf := make([]byte, Size)
	winner.ReadAt(buf, 0)
	assert.True(t, util.IsZero(buf[1:]))
}

func BenchmarkLookup(b *testing.B) {
	s := NewStore(nil)
	for i := uint64(0); i < 1024; i++ {
		s.InsertIfAbsent(i, nil)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Lookup(uint64(i) & 1023)
	}
}
