/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2017 Markus Stenberg
 *
 * Created:       Fri Dec 29 09:04:44 2017 mstenber
 * Last modified: Tue Apr 10 09:05:40 2018 mstenber
 * Edit time:     3 min
 *
 */

package util

import (
	"testing"

	"github.com/stvp/assert"
)

func TestConcatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ConcatBytes([]byte("foo"), []byte("bar")), []byte("foobar"))
	assert.Equal(t, len(ConcatBytes()), 0)
}

func TestUint64Bytes(t *testing.T) {
	t.Parallel()
	b := Uint64Bytes(0x0102)
	assert.Equal(t, b, []byte{0, 0, 0, 0, 0, 0, 1, 2})
	assert.Equal(t, BytesUint64(b), uint64(0x0102))
}

func TestIMinIsZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, IMin(3, 5, 1, 7), 1)
	assert.Equal(t, IMin(3), 3)
	assert.True(t, IsZero(make([]byte, 10)))
	assert.False(t, IsZero([]byte{0, 0, 1}))
}
