/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sun Apr 15 11:45:10 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     97 min
 *
 */

package pb

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/fingon/go-cowbrd/mlog"
	"github.com/golang/protobuf/proto"
	"github.com/twitchtv/twirp"
	"github.com/ugorji/go/codec"
)

const (
	HarnessPathPrefix = "/twirp/cowbrd.Harness/"

	contentType = "application/protobuf"
)

// MetaKeys are the twirp error meta keys passed over the wire.
var MetaKeys = []string{"kind"}

type wireError struct {
	Code string            `codec:"code" json:"code"`
	Msg  string            `codec:"msg" json:"msg"`
	Meta map[string]string `codec:"meta,omitempty" json:"meta,omitempty"`
}

var jsonHandle codec.JsonHandle

func encodeError(terr twirp.Error) []byte {
	we := wireError{Code: string(terr.Code()), Msg: terr.Msg()}
	for _, k := range MetaKeys {
		if v := terr.Meta(k); v != "" {
			if we.Meta == nil {
				we.Meta = make(map[string]string)
			}
			we.Meta[k] = v
		}
	}
	var b []byte
	if err := codec.NewEncoderBytes(&b, &jsonHandle).Encode(&we); err != nil {
		return []byte(`{"code":"internal","msg":"error encoding failed"}`)
	}
	return b
}

func decodeError(status int, body []byte) twirp.Error {
	var we wireError
	err := codec.NewDecoderBytes(body, &jsonHandle).Decode(&we)
	code := twirp.ErrorCode(we.Code)
	if err != nil || !twirp.IsValidErrorCode(code) {
		return twirp.NewError(twirp.Internal,
			fmt.Sprintf("status %d with undecodable body (%d bytes)", status, len(body)))
	}
	terr := twirp.NewError(code, we.Msg)
	for k, v := range we.Meta {
		terr = terr.WithMeta(k, v)
	}
	return terr
}

type method struct {
	request func() proto.Message
	call    func(ctx context.Context, req proto.Message) (proto.Message, error)
}

type harnessServer struct {
	methods map[string]method
}

// NewHarnessServer returns HTTP handler serving svc at
// HarnessPathPrefix. Errors that are not twirp errors are reported
// as internal ones.
func NewHarnessServer(svc Harness) http.Handler {
	empty := func() proto.Message { return &Empty{} }
	deviceId := func() proto.Message { return &DeviceId{} }
	onDevice := func(cb func(context.Context, *DeviceId) (*Empty, error)) method {
		return method{deviceId, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := cb(ctx, req.(*DeviceId))
			return res, err
		}}
	}
	onEmpty := func(cb func(context.Context, *Empty) (*Empty, error)) method {
		return method{empty, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := cb(ctx, req.(*Empty))
			return res, err
		}}
	}
	return &harnessServer{methods: map[string]method{
		"List": {empty, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := svc.List(ctx, req.(*Empty))
			return res, err
		}},
		"Status": {empty, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := svc.Status(ctx, req.(*Empty))
			return res, err
		}},
		"Freeze":   onDevice(svc.Freeze),
		"Unfreeze": onDevice(svc.Unfreeze),
		"Restore":  onDevice(svc.Restore),
		"Wipe":     onDevice(svc.Wipe),
		"Fingerprint": {deviceId, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := svc.Fingerprint(ctx, req.(*DeviceId))
			return res, err
		}},
		"Submit": {func() proto.Message { return &SubmitRequest{} },
			func(ctx context.Context, req proto.Message) (proto.Message, error) {
				res, err := svc.Submit(ctx, req.(*SubmitRequest))
				return res, err
			}},
		"SetLogging": {func() proto.Message { return &SetLoggingRequest{} },
			func(ctx context.Context, req proto.Message) (proto.Message, error) {
				res, err := svc.SetLogging(ctx, req.(*SetLoggingRequest))
				return res, err
			}},
		"Checkpoint": {empty, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := svc.Checkpoint(ctx, req.(*Empty))
			return res, err
		}},
		"GetMeta": {empty, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := svc.GetMeta(ctx, req.(*Empty))
			return res, err
		}},
		"GetData": {empty, func(ctx context.Context, req proto.Message) (proto.Message, error) {
			res, err := svc.GetData(ctx, req.(*Empty))
			return res, err
		}},
		"Advance":  onEmpty(svc.Advance),
		"ClearLog": onEmpty(svc.ClearLog),
	}}
}

func writeError(w http.ResponseWriter, terr twirp.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(twirp.ServerHTTPStatusFromErrorCode(terr.Code()))
	w.Write(encodeError(terr))
}

func (self *harnessServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, HarnessPathPrefix)
	m, ok := self.methods[name]
	if r.Method != "POST" || !ok || len(name) == len(r.URL.Path) {
		writeError(w, twirp.NewError(twirp.BadRoute,
			fmt.Sprintf("no handler for %s %s", r.Method, r.URL.Path)))
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != contentType {
		writeError(w, twirp.NewError(twirp.BadRoute,
			fmt.Sprintf("unexpected Content-Type %q", ct)))
		return
	}
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeError(w, twirp.InternalErrorWith(err))
		return
	}
	req := m.request()
	if err = proto.Unmarshal(body, req); err != nil {
		writeError(w, twirp.NewError(twirp.InvalidArgument, err.Error()))
		return
	}
	mlog.Printf2("pb/twirp", "%s %v", name, req)
	res, err := m.call(r.Context(), req)
	if err != nil {
		terr, ok := err.(twirp.Error)
		if !ok {
			terr = twirp.InternalErrorWith(err)
		}
		mlog.Printf2("pb/twirp", " error %v", terr)
		writeError(w, terr)
		return
	}
	b, err := proto.Marshal(res)
	if err != nil {
		writeError(w, twirp.InternalErrorWith(err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type harnessProtobufClient struct {
	client *http.Client
	prefix string
}

// NewHarnessProtobufClient returns Harness talking to server at
// addr, which is URL such as http://localhost:8712. nil client
// means http.DefaultClient.
func NewHarnessProtobufClient(addr string, client *http.Client) Harness {
	if client == nil {
		client = http.DefaultClient
	}
	return &harnessProtobufClient{client: client,
		prefix: strings.TrimSuffix(addr, "/") + HarnessPathPrefix}
}

func (self *harnessProtobufClient) call(ctx context.Context, name string, in, out proto.Message) error {
	b, err := proto.Marshal(in)
	if err != nil {
		return twirp.InternalErrorWith(err)
	}
	req, err := http.NewRequest("POST", self.prefix+name, bytes.NewReader(b))
	if err != nil {
		return twirp.InternalErrorWith(err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	resp, err := self.client.Do(req)
	if err != nil {
		return twirp.InternalErrorWith(err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return twirp.InternalErrorWith(err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, body)
	}
	if err = proto.Unmarshal(body, out); err != nil {
		return twirp.InternalErrorWith(err)
	}
	return nil
}

func (self *harnessProtobufClient) List(ctx context.Context, in *Empty) (*DeviceList, error) {
	out := &DeviceList{}
	return out, self.call(ctx, "List", in, out)
}

func (self *harnessProtobufClient) Status(ctx context.Context, in *Empty) (*Status, error) {
	out := &Status{}
	return out, self.call(ctx, "Status", in, out)
}

func (self *harnessProtobufClient) Freeze(ctx context.Context, in *DeviceId) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "Freeze", in, out)
}

func (self *harnessProtobufClient) Unfreeze(ctx context.Context, in *DeviceId) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "Unfreeze", in, out)
}

func (self *harnessProtobufClient) Restore(ctx context.Context, in *DeviceId) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "Restore", in, out)
}

func (self *harnessProtobufClient) Wipe(ctx context.Context, in *DeviceId) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "Wipe", in, out)
}

func (self *harnessProtobufClient) Fingerprint(ctx context.Context, in *DeviceId) (*Fingerprint, error) {
	out := &Fingerprint{}
	return out, self.call(ctx, "Fingerprint", in, out)
}

func (self *harnessProtobufClient) SetLogging(ctx context.Context, in *SetLoggingRequest) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "SetLogging", in, out)
}

func (self *harnessProtobufClient) Checkpoint(ctx context.Context, in *Empty) (*Checkpoint, error) {
	out := &Checkpoint{}
	return out, self.call(ctx, "Checkpoint", in, out)
}

func (self *harnessProtobufClient) GetMeta(ctx context.Context, in *Empty) (*Meta, error) {
	out := &Meta{}
	return out, self.call(ctx, "GetMeta", in, out)
}

func (self *harnessProtobufClient) GetData(ctx context.Context, in *Empty) (*Data, error) {
	out := &Data{}
	return out, self.call(ctx, "GetData", in, out)
}

func (self *harnessProtobufClient) Advance(ctx context.Context, in *Empty) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "Advance", in, out)
}

func (self *harnessProtobufClient) ClearLog(ctx context.Context, in *Empty) (*Empty, error) {
	out := &Empty{}
	return out, self.call(ctx, "ClearLog", in, out)
}

func (self *harnessProtobufClient) Submit(ctx context.Context, in *SubmitRequest) (*SubmitResponse, error) {
	out := &SubmitResponse{}
	return out, self.call(ctx, "Submit", in, out)
}
