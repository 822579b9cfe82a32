/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Thu Apr 19 10:40:12 2018 mstenber
 * Last modified: Thu Apr 19 11:20:48 2018 mstenber
 * Edit time:     31 min
 *
 */

package connector

import (
	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/pb"
	"github.com/fingon/go-cowbrd/wrapper"
)

// Target is device (or the log wrapper) of the server, so that the
// device package helpers work on it as they do locally.
type Target struct {
	conn     *Connector
	name     string
	capacity uint64
}

var _ device.Target = &Target{}

// Target looks up the named device on the server. The log wrapper is
// found by its own name too.
func (self *Connector) Target(name string) (*Target, error) {
	l, err := self.List()
	if err != nil {
		return nil, err
	}
	for _, d := range l {
		if d.Name == name || d.Name+wrapper.NameSuffix == name {
			return &Target{conn: self, name: name, capacity: d.CapacitySectors}, nil
		}
	}
	return nil, device.NotFound.New("no device %q", name)
}

func (self *Target) Name() string {
	return self.name
}

func (self *Target) CapacitySectors() uint64 {
	return self.capacity
}

// Submit sends the request to the server. Reads fill the request
// segments, or set single one if there were none.
func (self *Target) Submit(req *device.Request) error {
	mlog.Printf2("connector/target", "%s.Submit %v", self.name, req)
	in := &pb.SubmitRequest{Target: self.name, Op: uint32(req.Op),
		Sector: req.Sector, Length: req.Length, Flags: uint32(req.Flags)}
	if req.Op == device.OpWrite {
		in.Data = req.Data()
	}
	res, err := self.conn.client.Submit(self.conn.Context, in)
	if err != nil {
		return mapError(err)
	}
	if req.Op != device.OpRead {
		return nil
	}
	if req.Segments == nil {
		req.Segments = [][]byte{res.Data}
		return nil
	}
	data := res.Data
	for _, seg := range req.Segments {
		data = data[copy(seg, data):]
	}
	return nil
}
