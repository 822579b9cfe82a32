/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Apr 13 13:10:44 2018 mstenber
 * Last modified: Sat Apr 14 10:02:31 2018 mstenber
 * Edit time:     47 min
 *
 */

// registry package owns the set of devices of single running
// instance: the base devices, their snapshots, the shared page
// budget, and the optional write log wrapper.
package registry

import (
	"fmt"

	"github.com/fingon/go-cowbrd/config"
	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/page"
	"github.com/fingon/go-cowbrd/wrapper"
)

const (
	BaseNameFormat     = "cow_ram%d"
	SnapshotNameFormat = "cow_ram_snapshot%d_%d"
)

type Registry struct {
	config    config.Config
	allocator *page.Allocator
	devices   []*device.Device
	byName    map[string]*device.Device
	wrapper   *wrapper.Wrapper
}

// DeviceName returns the name of device id given numDisks base
// devices. Ids past the base devices are snapshots; snapshot i is
// bound to base device i % numDisks.
func DeviceName(id, numDisks int) string {
	if id < numDisks {
		return fmt.Sprintf(BaseNameFormat, id)
	}
	return fmt.Sprintf(SnapshotNameFormat, id/numDisks, id%numDisks)
}

func New(c config.Config) (*Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	self := &Registry{
		config:    c,
		allocator: &page.Allocator{Limit: c.MaxPages},
		byName:    make(map[string]*device.Device),
	}
	for i := 0; i < c.TotalDevices(); i++ {
		dc := device.Config{
			Id:              i,
			Name:            DeviceName(i, c.NumDisks),
			CapacitySectors: c.CapacitySectors,
			Allocator:       self.allocator,
		}
		if i >= c.NumDisks {
			dc.Parent = self.devices[i%c.NumDisks]
		}
		d := device.New(dc)
		self.devices = append(self.devices, d)
		self.byName[d.Name()] = d
		mlog.Printf2("registry/registry", "created %v (snapshot:%v)", d, d.IsSnapshot())
	}
	if c.LogTarget != "" {
		d, err := self.DeviceByName(c.LogTarget)
		if err != nil {
			return nil, err
		}
		self.wrapper = wrapper.New(d, nil)
		self.wrapper.SetLogging(c.LogEnabled)
	}
	return self, nil
}

func (self *Registry) Config() config.Config {
	return self.config
}

func (self *Registry) Allocator() *page.Allocator {
	return self.allocator
}

// Devices returns every device in id order.
func (self *Registry) Devices() []*device.Device {
	return append([]*device.Device(nil), self.devices...)
}

func (self *Registry) Device(id int) (*device.Device, error) {
	if id < 0 || id >= len(self.devices) {
		return nil, device.NotFound.New("no device %d", id)
	}
	return self.devices[id], nil
}

func (self *Registry) DeviceByName(name string) (*device.Device, error) {
	d, ok := self.byName[name]
	if !ok {
		return nil, device.NotFound.New("no device %q", name)
	}
	return d, nil
}

// Wrapper returns the log wrapper, or nil if none was configured.
func (self *Registry) Wrapper() *wrapper.Wrapper {
	return self.wrapper
}

// Target returns what the requests to the named device should be
// submitted to: the wrapper, if one is configured for it, or the
// device itself. The wrapper may also be addressed by its own name.
func (self *Registry) Target(name string) (device.Target, error) {
	if w := self.wrapper; w != nil {
		if name == w.Name() || name == w.Target().Name() {
			return w, nil
		}
	}
	return self.DeviceByName(name)
}

func (self *Registry) control(id int, op string, cb func(d *device.Device) error) error {
	d, err := self.Device(id)
	if err != nil {
		return err
	}
	mlog.Printf2("registry/registry", "%s %v", op, d)
	return cb(d)
}

func (self *Registry) Freeze(id int) error {
	return self.control(id, "Freeze", (*device.Device).Freeze)
}

func (self *Registry) Unfreeze(id int) error {
	return self.control(id, "Unfreeze", (*device.Device).Unfreeze)
}

func (self *Registry) Restore(id int) error {
	return self.control(id, "Restore", (*device.Device).Restore)
}

func (self *Registry) Wipe(id int) error {
	return self.control(id, "Wipe", (*device.Device).Wipe)
}

// Close releases the pages of every device. Snapshots go first, as
// they refer to their parents.
func (self *Registry) Close() {
	for i := len(self.devices) - 1; i >= 0; i-- {
		self.devices[i].Close()
	}
	mlog.Printf2("registry/registry", "Close - %d pages still used", self.allocator.Used())
}
