/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sun Apr 15 10:12:40 2018 mstenber
 * Last modified: Thu Apr 19 12:05:31 2018 mstenber
 * Edit time:     54 min
 *
 */

// pb package contains the messages and the HTTP transport of the
// harness control service. The messages are protobuf encoded on the
// wire, and errors are twirp errors.
package pb

import (
	"context"

	"github.com/golang/protobuf/proto"
)

// Harness is the control service the test harness talks to.
type Harness interface {
	List(context.Context, *Empty) (*DeviceList, error)
	Status(context.Context, *Empty) (*Status, error)

	Freeze(context.Context, *DeviceId) (*Empty, error)
	Unfreeze(context.Context, *DeviceId) (*Empty, error)
	Restore(context.Context, *DeviceId) (*Empty, error)
	Wipe(context.Context, *DeviceId) (*Empty, error)
	Fingerprint(context.Context, *DeviceId) (*Fingerprint, error)
	Submit(context.Context, *SubmitRequest) (*SubmitResponse, error)

	SetLogging(context.Context, *SetLoggingRequest) (*Empty, error)
	Checkpoint(context.Context, *Empty) (*Checkpoint, error)
	GetMeta(context.Context, *Empty) (*Meta, error)
	GetData(context.Context, *Empty) (*Data, error)
	Advance(context.Context, *Empty) (*Empty, error)
	ClearLog(context.Context, *Empty) (*Empty, error)
}

type Empty struct {
}

func (m *Empty) Reset()         { *m = Empty{} }
func (m *Empty) String() string { return proto.CompactTextString(m) }
func (*Empty) ProtoMessage()    {}

type DeviceId struct {
	Id int32 `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *DeviceId) Reset()         { *m = DeviceId{} }
func (m *DeviceId) String() string { return proto.CompactTextString(m) }
func (*DeviceId) ProtoMessage()    {}

type Device struct {
	Id              int32  `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Name            string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	CapacitySectors uint64 `protobuf:"varint,3,opt,name=capacity_sectors,json=capacitySectors,proto3" json:"capacity_sectors,omitempty"`
	Snapshot        bool   `protobuf:"varint,4,opt,name=snapshot,proto3" json:"snapshot,omitempty"`
	// Parent is the id of the base device of a snapshot.
	Parent   int32 `protobuf:"varint,5,opt,name=parent,proto3" json:"parent,omitempty"`
	Writable bool  `protobuf:"varint,6,opt,name=writable,proto3" json:"writable,omitempty"`
	Pages    int64 `protobuf:"varint,7,opt,name=pages,proto3" json:"pages,omitempty"`
}

func (m *Device) Reset()         { *m = Device{} }
func (m *Device) String() string { return proto.CompactTextString(m) }
func (*Device) ProtoMessage()    {}

type DeviceList struct {
	Devices []*Device `protobuf:"bytes,1,rep,name=devices,proto3" json:"devices,omitempty"`
}

func (m *DeviceList) Reset()         { *m = DeviceList{} }
func (m *DeviceList) String() string { return proto.CompactTextString(m) }
func (*DeviceList) ProtoMessage()    {}

type Status struct {
	PagesUsed  int64  `protobuf:"varint,1,opt,name=pages_used,json=pagesUsed,proto3" json:"pages_used,omitempty"`
	PagesLimit int64  `protobuf:"varint,2,opt,name=pages_limit,json=pagesLimit,proto3" json:"pages_limit,omitempty"`
	LogTarget  string `protobuf:"bytes,3,opt,name=log_target,json=logTarget,proto3" json:"log_target,omitempty"`
	Logging    bool   `protobuf:"varint,4,opt,name=logging,proto3" json:"logging,omitempty"`
	LogLength  int64  `protobuf:"varint,5,opt,name=log_length,json=logLength,proto3" json:"log_length,omitempty"`
	LogUnread  int64  `protobuf:"varint,6,opt,name=log_unread,json=logUnread,proto3" json:"log_unread,omitempty"`
}

func (m *Status) Reset()         { *m = Status{} }
func (m *Status) String() string { return proto.CompactTextString(m) }
func (*Status) ProtoMessage()    {}

type SetLoggingRequest struct {
	On bool `protobuf:"varint,1,opt,name=on,proto3" json:"on,omitempty"`
}

func (m *SetLoggingRequest) Reset()         { *m = SetLoggingRequest{} }
func (m *SetLoggingRequest) String() string { return proto.CompactTextString(m) }
func (*SetLoggingRequest) ProtoMessage()    {}

type Checkpoint struct {
	Number uint64 `protobuf:"varint,1,opt,name=number,proto3" json:"number,omitempty"`
}

func (m *Checkpoint) Reset()         { *m = Checkpoint{} }
func (m *Checkpoint) String() string { return proto.CompactTextString(m) }
func (*Checkpoint) ProtoMessage()    {}

type Meta struct {
	Flags  uint32 `protobuf:"varint,1,opt,name=flags,proto3" json:"flags,omitempty"`
	Sector uint64 `protobuf:"varint,2,opt,name=sector,proto3" json:"sector,omitempty"`
	Size   uint32 `protobuf:"varint,3,opt,name=size,proto3" json:"size,omitempty"`
	Time   int64  `protobuf:"varint,4,opt,name=time,proto3" json:"time,omitempty"`
	Seq    uint64 `protobuf:"varint,5,opt,name=seq,proto3" json:"seq,omitempty"`
}

func (m *Meta) Reset()         { *m = Meta{} }
func (m *Meta) String() string { return proto.CompactTextString(m) }
func (*Meta) ProtoMessage()    {}

type Data struct {
	Data []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *Data) Reset()         { *m = Data{} }
func (m *Data) String() string { return proto.CompactTextString(m) }
func (*Data) ProtoMessage()    {}

type Fingerprint struct {
	Value uint64 `protobuf:"fixed64,1,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *Fingerprint) Reset()         { *m = Fingerprint{} }
func (m *Fingerprint) String() string { return proto.CompactTextString(m) }
func (*Fingerprint) ProtoMessage()    {}

// SubmitRequest carries single storage request to named device (or
// the log wrapper). Op and Flags are device.Op and device.Flags.
type SubmitRequest struct {
	Target string `protobuf:"bytes,1,opt,name=target,proto3" json:"target,omitempty"`
	Op     uint32 `protobuf:"varint,2,opt,name=op,proto3" json:"op,omitempty"`
	Sector uint64 `protobuf:"varint,3,opt,name=sector,proto3" json:"sector,omitempty"`
	Length uint32 `protobuf:"varint,4,opt,name=length,proto3" json:"length,omitempty"`
	Data   []byte `protobuf:"bytes,5,opt,name=data,proto3" json:"data,omitempty"`
	Flags  uint32 `protobuf:"varint,6,opt,name=flags,proto3" json:"flags,omitempty"`
}

func (m *SubmitRequest) Reset()         { *m = SubmitRequest{} }
func (m *SubmitRequest) String() string { return proto.CompactTextString(m) }
func (*SubmitRequest) ProtoMessage()    {}

// SubmitResponse has the data read, for reads.
type SubmitResponse struct {
	Data []byte `protobuf:"bytes,1,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *SubmitResponse) Reset()         { *m = SubmitResponse{} }
func (m *SubmitResponse) String() string { return proto.CompactTextString(m) }
func (*SubmitResponse) ProtoMessage()    {}
