/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 16:28:57 2018 mstenber
 * Last modified: Sat Apr 14 16:40:31 2018 mstenber
 * Edit time:     44 min
 *
 */

package factory

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/fingon/go-cowbrd/config"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/google/go-cmp/cmp"
	"github.com/stvp/assert"
)

func TestList(t *testing.T) {
	t.Parallel()
	assert.Equal(t, List(), []string{"badger", "bolt", "inmemory"})
	_, err := New("nope", "")
	assert.True(t, storage.Error.Has(err))
}

func prodBackend(t *testing.T, be storage.Backend) {
	assert.Equal(t, be.Count(), 0)
	for i := 1; i <= 3; i++ {
		seq, err := be.Append([]byte(fmt.Sprintf("r%d", i)))
		assert.Nil(t, err)
		assert.Equal(t, seq, uint64(i))
	}
	assert.Equal(t, be.Count(), 3)
	var got []string
	err := be.Iterate(func(seq uint64, r []byte) error {
		got = append(got, fmt.Sprintf("%d:%s", seq, r))
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, got, []string{"1:r1", "2:r2", "3:r3"})

	stop := fmt.Errorf("stop")
	n := 0
	err = be.Iterate(func(seq uint64, r []byte) error {
		n++
		return stop
	})
	assert.Equal(t, err, stop)
	assert.Equal(t, n, 1)

	assert.Nil(t, be.Clear())
	assert.Equal(t, be.Count(), 0)
	seq, err := be.Append([]byte("again"))
	assert.Nil(t, err)
	assert.Equal(t, seq, uint64(1))
}

func TestBackends(t *testing.T) {
	t.Parallel()
	for _, name := range List() {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir, err := ioutil.TempDir("", name)
			assert.Nil(t, err)
			defer os.RemoveAll(dir)
			be, err := New(name, dir)
			assert.Nil(t, err)
			defer be.Close()
			prodBackend(t, be)
		})
	}
}

func TestPersistence(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"badger", "bolt"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir, err := ioutil.TempDir("", name)
			assert.Nil(t, err)
			defer os.RemoveAll(dir)
			be, err := New(name, dir)
			assert.Nil(t, err)
			_, err = be.Append([]byte("x"))
			assert.Nil(t, err)
			be.Close()

			be, err = New(name, dir)
			assert.Nil(t, err)
			defer be.Close()
			assert.Equal(t, be.Count(), 1)
			seq, err := be.Append([]byte("y"))
			assert.Nil(t, err)
			assert.Equal(t, seq, uint64(2))
		})
	}
}

func TestArchive(t *testing.T) {
	t.Parallel()
	for _, password := range []string{"", "secret"} {
		password := password
		t.Run(fmt.Sprintf("pw=%q", password), func(t *testing.T) {
			t.Parallel()
			dir, err := ioutil.TempDir("", "archive")
			assert.Nil(t, err)
			defer os.RemoveAll(dir)

			a, err := NewArchive(config.Archive{Backend: "bolt",
				Directory: dir, Password: password})
			assert.Nil(t, err)
			defer a.Close()

			entries := []*wrapper.Entry{
				{Meta: wrapper.Meta{Flags: wrapper.FlagCheckpoint}},
				{Meta: wrapper.Meta{Flags: wrapper.FlagWrite, Sector: 3, Size: 4096, Seq: 1},
					Data: make([]byte, 4096)},
				{Meta: wrapper.Meta{Flags: wrapper.FlagFlush, Seq: 2}},
			}
			for _, e := range entries {
				_, err := a.Store(e)
				assert.Nil(t, err)
			}
			got, err := a.Entries()
			assert.Nil(t, err)
			if diff := cmp.Diff(entries, got); diff != "" {
				t.Errorf("archive mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
