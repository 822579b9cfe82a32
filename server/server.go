/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Tue Jan 16 14:38:35 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     190 min
 *
 */

// server package exposes registry (and its write log) to the test
// harness over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	. "github.com/fingon/go-cowbrd/pb"
	"github.com/fingon/go-cowbrd/registry"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/twitchtv/twirp"
)

// kindCodes maps the device error kinds to the closest twirp code.
// The kind itself travels in error meta "kind".
var kindCodes = map[string]twirp.ErrorCode{
	"not_writable":  twirp.PermissionDenied,
	"invalid_state": twirp.FailedPrecondition,
	"out_of_range":  twirp.OutOfRange,
	"out_of_memory": twirp.ResourceExhausted,
	"would_block":   twirp.Unavailable,
	"no_data":       twirp.NotFound,
	"not_found":     twirp.NotFound,
}

// TwirpError converts error to twirp error carrying its kind.
func TwirpError(err error) twirp.Error {
	if terr, ok := err.(twirp.Error); ok {
		return terr
	}
	kind := device.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		return twirp.InternalErrorWith(err)
	}
	return twirp.NewError(code, err.Error()).WithMeta("kind", kind)
}

type Server struct {
	Registry *registry.Registry

	// Address to listen at; empty means the handler is served by
	// the caller.
	Address string

	listener   net.Listener
	httpServer *http.Server
}

var _ Harness = &Server{}

func (self Server) Init() (*Server, error) {
	if self.Address == "" {
		return &self, nil
	}
	lis, err := net.Listen("tcp", self.Address)
	if err != nil {
		return nil, err
	}
	mlog.Printf("Server at %s", lis.Addr())
	self.listener = lis
	self.httpServer = &http.Server{Handler: self.Handler()}
	go self.httpServer.Serve(lis)
	return &self, nil
}

// Addr returns the address actually listened at, or empty string if
// the server is not listening.
func (self *Server) Addr() string {
	if self.listener == nil {
		return ""
	}
	return self.listener.Addr().String()
}

func (self *Server) Handler() http.Handler {
	return NewHarnessServer(self)
}

func (self *Server) Close() {
	if self.httpServer != nil {
		self.httpServer.Close()
	}
}

func (self *Server) log() (*wrapper.Log, error) {
	w := self.Registry.Wrapper()
	if w == nil {
		return nil, TwirpError(device.InvalidState.New("no log wrapper configured"))
	}
	return w.Log(), nil
}

func (self *Server) List(ctx context.Context, req *Empty) (*DeviceList, error) {
	res := &DeviceList{}
	for _, d := range self.Registry.Devices() {
		pd := &Device{Id: int32(d.Id()), Name: d.Name(),
			CapacitySectors: d.CapacitySectors(), Snapshot: d.IsSnapshot(),
			Writable: d.Writable(), Pages: int64(d.Pages())}
		if d.IsSnapshot() {
			pd.Parent = int32(d.Parent().Id())
		}
		res.Devices = append(res.Devices, pd)
	}
	return res, nil
}

func (self *Server) Status(ctx context.Context, req *Empty) (*Status, error) {
	a := self.Registry.Allocator()
	res := &Status{PagesUsed: a.Used(), PagesLimit: a.Limit}
	if w := self.Registry.Wrapper(); w != nil {
		res.LogTarget = w.Target().Name()
		res.Logging = w.Logging()
		res.LogLength = int64(w.Log().Len())
		res.LogUnread = int64(w.Log().Unread())
	}
	return res, nil
}

func (self *Server) control(cb func(id int) error, req *DeviceId) (*Empty, error) {
	if err := cb(int(req.Id)); err != nil {
		return nil, TwirpError(err)
	}
	return &Empty{}, nil
}

func (self *Server) Freeze(ctx context.Context, req *DeviceId) (*Empty, error) {
	return self.control(self.Registry.Freeze, req)
}

func (self *Server) Unfreeze(ctx context.Context, req *DeviceId) (*Empty, error) {
	return self.control(self.Registry.Unfreeze, req)
}

func (self *Server) Restore(ctx context.Context, req *DeviceId) (*Empty, error) {
	return self.control(self.Registry.Restore, req)
}

func (self *Server) Wipe(ctx context.Context, req *DeviceId) (*Empty, error) {
	return self.control(self.Registry.Wipe, req)
}

func (self *Server) Fingerprint(ctx context.Context, req *DeviceId) (*Fingerprint, error) {
	d, err := self.Registry.Device(int(req.Id))
	if err != nil {
		return nil, TwirpError(err)
	}
	return &Fingerprint{Value: d.Fingerprint()}, nil
}

// Submit passes storage request to the named target. Naming the
// device the log wrapper sits in front of goes through the wrapper.
func (self *Server) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	t, err := self.Registry.Target(req.Target)
	if err != nil {
		return nil, TwirpError(err)
	}
	if req.Op > uint32(device.OpFlush) {
		return nil, twirp.InvalidArgumentError("op", fmt.Sprintf("unknown op %d", req.Op))
	}
	op := device.Op(req.Op)
	dr := &device.Request{Op: op, Sector: req.Sector, Length: req.Length,
		Flags: device.Flags(req.Flags)}
	if op == device.OpWrite {
		if len(req.Data) != int(req.Length) {
			return nil, twirp.InvalidArgumentError("data",
				fmt.Sprintf("has %d bytes, length is %d", len(req.Data), req.Length))
		}
		dr.Segments = [][]byte{req.Data}
	}
	if err = t.Submit(dr); err != nil {
		return nil, TwirpError(err)
	}
	res := &SubmitResponse{}
	if op == device.OpRead {
		res.Data = dr.Data()
	}
	return res, nil
}

func (self *Server) SetLogging(ctx context.Context, req *SetLoggingRequest) (*Empty, error) {
	w := self.Registry.Wrapper()
	if w == nil {
		_, err := self.log()
		return nil, err
	}
	w.SetLogging(req.On)
	return &Empty{}, nil
}

func (self *Server) Checkpoint(ctx context.Context, req *Empty) (*Checkpoint, error) {
	l, err := self.log()
	if err != nil {
		return nil, err
	}
	return &Checkpoint{Number: l.Checkpoint()}, nil
}

func (self *Server) GetMeta(ctx context.Context, req *Empty) (*Meta, error) {
	l, err := self.log()
	if err != nil {
		return nil, err
	}
	m, err := l.GetMeta()
	if err != nil {
		return nil, TwirpError(err)
	}
	return MetaFrom(m), nil
}

func (self *Server) GetData(ctx context.Context, req *Empty) (*Data, error) {
	l, err := self.log()
	if err != nil {
		return nil, err
	}
	data, err := l.Data()
	if err != nil {
		return nil, TwirpError(err)
	}
	return &Data{Data: data}, nil
}

func (self *Server) Advance(ctx context.Context, req *Empty) (*Empty, error) {
	l, err := self.log()
	if err != nil {
		return nil, err
	}
	if err = l.Advance(); err != nil {
		return nil, TwirpError(err)
	}
	return &Empty{}, nil
}

func (self *Server) ClearLog(ctx context.Context, req *Empty) (*Empty, error) {
	l, err := self.log()
	if err != nil {
		return nil, err
	}
	l.Clear()
	return &Empty{}, nil
}
