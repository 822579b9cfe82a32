/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Jan  8 10:19:05 2018 mstenber
 * Last modified: Mon Apr  9 10:14:50 2018 mstenber
 * Edit time:     1 min
 *
 */

package util

import "sync"

// SimpleWaitGroup is sync.WaitGroup that also starts the goroutines.
type SimpleWaitGroup struct {
	sync.WaitGroup
}

func (self *SimpleWaitGroup) Go(cb func()) {
	self.Add(1)
	go func() {
		defer self.Done()
		cb()
	}()
}
