/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Jan  4 12:24:51 2018 mstenber
 * Last modified: Mon Apr  9 10:20:02 2018 mstenber
 * Edit time:     6 min
 *
 */

package util

import (
	"testing"

	"github.com/stvp/assert"
)

func TestMutexLocked(t *testing.T) {
	t.Parallel()
	var l MutexLocked
	var wg SimpleWaitGroup
	j := 0
	for i := 0; i < 10; i++ {
		wg.Go(func() {
			defer l.Locked()()
			j++
		})
	}
	wg.Wait()
	assert.Equal(t, j, 10)
}

func TestRWMutexLocked(t *testing.T) {
	t.Parallel()
	var l RWMutexLocked
	var wg SimpleWaitGroup
	m := make(map[int]int)
	for i := 0; i < 10; i++ {
		i := i
		wg.Go(func() {
			defer l.Locked()()
			m[i] = i * 2
		})
		wg.Go(func() {
			defer l.RLocked()()
			_ = m[i]
		})
	}
	wg.Wait()
	unlock := l.RLocked()
	assert.Equal(t, len(m), 10)
	assert.Equal(t, m[7], 14)
	unlock()
}
