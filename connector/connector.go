/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan 17 14:19:35 2018 mstenber
 * Last modified: Sun Apr 15 16:31:08 2018 mstenber
 * Edit time:     112 min
 *
 */

// connector package is the client side of the harness control
// service. Errors returned by the server are turned back to the
// device error kinds, so e.g. device.NoData.Has(err) works the same
// way for remote log as for local one.
package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/pb"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/twitchtv/twirp"
)

type Connector struct {
	// Address of the server, either host:port or URL.
	Address string

	// Client defaults to http.DefaultClient.
	Client *http.Client

	// Context is used for every call; defaults to
	// context.Background().
	Context context.Context

	client pb.Harness
}

var _ storage.Cursor = &Connector{}

func (self Connector) Init() *Connector {
	url := self.Address
	if !strings.Contains(url, "://") {
		url = fmt.Sprintf("http://%s", url)
	}
	if self.Client == nil {
		self.Client = http.DefaultClient
	}
	if self.Context == nil {
		self.Context = context.Background()
	}
	mlog.Printf2("connector/connector", "Init %v", url)
	self.client = pb.NewHarnessProtobufClient(url, self.Client)
	return &self
}

// mapError converts twirp errors carrying device error kind back to
// the kind.
func mapError(err error) error {
	terr, ok := err.(twirp.Error)
	if !ok {
		return err
	}
	if kind := terr.Meta("kind"); kind != "" {
		return device.KindError(kind, terr.Msg())
	}
	return err
}

func (self *Connector) List() ([]*pb.Device, error) {
	res, err := self.client.List(self.Context, &pb.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return res.Devices, nil
}

func (self *Connector) Status() (*pb.Status, error) {
	res, err := self.client.Status(self.Context, &pb.Empty{})
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

type deviceCall func(context.Context, *pb.DeviceId) (*pb.Empty, error)

func (self *Connector) control(cb deviceCall, id int) error {
	_, err := cb(self.Context, &pb.DeviceId{Id: int32(id)})
	return mapError(err)
}

func (self *Connector) Freeze(id int) error {
	return self.control(self.client.Freeze, id)
}

func (self *Connector) Unfreeze(id int) error {
	return self.control(self.client.Unfreeze, id)
}

func (self *Connector) Restore(id int) error {
	return self.control(self.client.Restore, id)
}

func (self *Connector) Wipe(id int) error {
	return self.control(self.client.Wipe, id)
}

func (self *Connector) Fingerprint(id int) (uint64, error) {
	res, err := self.client.Fingerprint(self.Context, &pb.DeviceId{Id: int32(id)})
	if err != nil {
		return 0, mapError(err)
	}
	return res.Value, nil
}

func (self *Connector) SetLogging(on bool) error {
	_, err := self.client.SetLogging(self.Context, &pb.SetLoggingRequest{On: on})
	return mapError(err)
}

func (self *Connector) Checkpoint() (uint64, error) {
	res, err := self.client.Checkpoint(self.Context, &pb.Empty{})
	if err != nil {
		return 0, mapError(err)
	}
	return res.Number, nil
}

func (self *Connector) GetMeta() (wrapper.Meta, error) {
	res, err := self.client.GetMeta(self.Context, &pb.Empty{})
	if err != nil {
		return wrapper.Meta{}, mapError(err)
	}
	return res.Wrapper(), nil
}

// GetData copies the payload of the current entry into buf, like
// wrapper.Log.GetData.
func (self *Connector) GetData(buf []byte) (int, error) {
	res, err := self.client.GetData(self.Context, &pb.Empty{})
	if err != nil {
		return 0, mapError(err)
	}
	if len(buf) < len(res.Data) {
		return 0, device.InvalidState.New("buffer of %d bytes too small for %d", len(buf), len(res.Data))
	}
	return copy(buf, res.Data), nil
}

func (self *Connector) Advance() error {
	_, err := self.client.Advance(self.Context, &pb.Empty{})
	return mapError(err)
}

func (self *Connector) ClearLog() error {
	_, err := self.client.ClearLog(self.Context, &pb.Empty{})
	return mapError(err)
}
