/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr  9 15:30:05 2018 mstenber
 * Last modified: Thu Apr 12 11:02:56 2018 mstenber
 * Edit time:     57 min
 *
 */

// device implements in-memory block devices with single-level
// copy-on-write snapshots.
//
// Base device owns its pages. Snapshot device is bound at creation to
// one base device (its parent); it reads through to the parent for
// pages it does not have, and materializes its own copy of a page on
// first write to it. The parent is never modified by the snapshot, so
// Restore is just dropping the snapshot's own pages.
package device

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/page"
)

type Config struct {
	Id              int
	Name            string
	CapacitySectors uint64

	// Parent makes the device a snapshot of Parent. Parent must
	// not be a snapshot, and must outlive the device.
	Parent *Device

	// Allocator is shared page budget; nil means unlimited.
	Allocator *page.Allocator
}

type Device struct {
	id       int
	name     string
	capacity uint64
	parent   *Device
	pages    *page.Store

	// accessed atomically; 1 if writable
	writable int32
}

var _ Target = &Device{}

func New(config Config) *Device {
	if config.Parent != nil && config.Parent.IsSnapshot() {
		log.Panicf("%s: parent %s is a snapshot", config.Name, config.Parent.Name())
	}
	name := config.Name
	if name == "" {
		name = fmt.Sprintf("dev%d", config.Id)
	}
	return &Device{
		id:       config.Id,
		name:     name,
		capacity: config.CapacitySectors,
		parent:   config.Parent,
		pages:    page.NewStore(config.Allocator),
		writable: 1,
	}
}

func (self *Device) Id() int                 { return self.id }
func (self *Device) Name() string            { return self.name }
func (self *Device) CapacitySectors() uint64 { return self.capacity }
func (self *Device) IsSnapshot() bool        { return self.parent != nil }

// Parent returns the device this is a snapshot of, or nil.
func (self *Device) Parent() *Device { return self.parent }

func (self *Device) Writable() bool {
	return atomic.LoadInt32(&self.writable) != 0
}

// Pages returns the number of pages the device owns.
func (self *Device) Pages() int {
	return self.pages.Len()
}

func (self *Device) String() string {
	return self.name
}

func (self *Device) setWritable(value bool) {
	var v int32
	if value {
		v = 1
	}
	atomic.StoreInt32(&self.writable, v)
}

// Freeze makes base device read-only, so snapshots of it have a
// stable view.
func (self *Device) Freeze() error {
	if self.IsSnapshot() {
		return InvalidState.New("%s: freeze of snapshot", self.name)
	}
	mlog.Printf2("device/device", "%s.Freeze", self.name)
	self.setWritable(false)
	return nil
}

// Unfreeze makes base device writable again.
func (self *Device) Unfreeze() error {
	if self.IsSnapshot() {
		return InvalidState.New("%s: unfreeze of snapshot", self.name)
	}
	mlog.Printf2("device/device", "%s.Unfreeze", self.name)
	self.setWritable(true)
	return nil
}

// Restore drops every page of the snapshot, so that it again mirrors
// its parent exactly. Traffic to the device must be quiesced by the
// caller.
func (self *Device) Restore() error {
	if !self.IsSnapshot() {
		return InvalidState.New("%s: restore of non-snapshot", self.name)
	}
	n := self.pages.Clear()
	mlog.Printf2("device/device", "%s.Restore dropped %d pages", self.name, n)
	return nil
}

// Wipe drops every page of base device. The caller must ensure no
// snapshot depends on the current content, and that there is no
// traffic to the device.
func (self *Device) Wipe() error {
	if self.IsSnapshot() {
		return InvalidState.New("%s: wipe of snapshot", self.name)
	}
	n := self.pages.Clear()
	mlog.Printf2("device/device", "%s.Wipe dropped %d pages", self.name, n)
	return nil
}

// Close releases the pages; device must not be used afterwards.
func (self *Device) Close() {
	self.pages.Clear()
}
