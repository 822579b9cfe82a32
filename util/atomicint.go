/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Mar 21 11:19:49 2018 mstenber
 * Last modified: Mon Apr  9 10:31:45 2018 mstenber
 * Edit time:     9 min
 *
 */

package util

import "sync/atomic"

// AtomicInt is int64 that is only ever accessed atomically. Zero
// value is usable.
type AtomicInt int64

func (self *AtomicInt) Get() int64 {
	return atomic.LoadInt64((*int64)(self))
}

func (self *AtomicInt) GetInt() int {
	return int(self.Get())
}

// Add adds value and returns the new value.
func (self *AtomicInt) Add(value int64) int64 {
	return atomic.AddInt64((*int64)(self), value)
}

func (self *AtomicInt) AddInt(value int) int {
	return int(self.Add(int64(value)))
}

func (self *AtomicInt) Set(value int64) {
	atomic.StoreInt64((*int64)(self), value)
}

func (self *AtomicInt) CompareAndSwap(old, value int64) bool {
	return atomic.CompareAndSwapInt64((*int64)(self), old, value)
}
