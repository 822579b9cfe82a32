/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Apr 11 15:08:47 2018 mstenber
 * Last modified: Fri Apr 13 10:50:12 2018 mstenber
 * Edit time:     38 min
 *
 */

// wrapper package provides device.Target that records every
// modifying request submitted through it before passing it
// unchanged to the wrapped target.
package wrapper

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
)

const NameSuffix = "_wrapper"

type Wrapper struct {
	target  device.Target
	log     *Log
	logging int32

	// Now is used to timestamp entries; tests may override it.
	Now func() time.Time
}

var _ device.Target = &Wrapper{}

// New wraps target. If log is nil, new one is created. Logging is
// initially off.
func New(target device.Target, log *Log) *Wrapper {
	if log == nil {
		log = NewLog()
	}
	return &Wrapper{target: target, log: log, Now: time.Now}
}

func (self *Wrapper) Name() string {
	return self.target.Name() + NameSuffix
}

func (self *Wrapper) CapacitySectors() uint64 {
	return self.target.CapacitySectors()
}

func (self *Wrapper) Target() device.Target {
	return self.target
}

func (self *Wrapper) Log() *Log {
	return self.log
}

func (self *Wrapper) SetLogging(on bool) {
	var v int32
	if on {
		v = 1
	}
	atomic.StoreInt32(&self.logging, v)
	mlog.Printf2("wrapper/wrapper", "%v.SetLogging %v", self, on)
}

func (self *Wrapper) Logging() bool {
	return atomic.LoadInt32(&self.logging) != 0
}

// Submit logs the request if logging is on and the request modifies
// the device, and then forwards it. The entry is complete before it
// becomes visible in the log, and it is logged even if the wrapped
// target then fails the request.
func (self *Wrapper) Submit(req *device.Request) error {
	if self.Logging() && Loggable(req) {
		self.log.Append(NewEntry(req, self.Now()))
	}
	return self.target.Submit(req)
}

func (self *Wrapper) String() string {
	return fmt.Sprintf("Wrapper{%s}", self.target.Name())
}
