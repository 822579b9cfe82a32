/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Apr 13 12:01:55 2018 mstenber
 * Last modified: Fri Apr 13 12:48:20 2018 mstenber
 * Edit time:     31 min
 *
 */

// config package describes the devices to create, and where the
// harness server and the log archive live.
package config

import (
	"io/ioutil"

	"github.com/fingon/go-cowbrd/page"
	"github.com/goccy/go-yaml"
	"github.com/zeebo/errs"
)

var Error = errs.Class("config")

const (
	DefaultNumDisks     = 1
	DefaultNumSnapshots = 1

	// DefaultSizeKB is the default device size in kilobytes.
	DefaultSizeKB = 512000

	DefaultAddress = "127.0.0.1:8712"
)

type Archive struct {
	// Backend is the name of the storage backend (see
	// storage/factory); empty disables archiving.
	Backend string `yaml:"backend"`

	Directory string `yaml:"directory"`

	// Password enables payload encryption.
	Password string `yaml:"password"`
	Salt     string `yaml:"salt"`
}

type Config struct {
	NumDisks        int    `yaml:"num_disks"`
	NumSnapshots    int    `yaml:"num_snapshots"`
	CapacitySectors uint64 `yaml:"capacity_sectors"`

	// MaxPages bounds the pages allocated by all devices; 0 is
	// unlimited.
	MaxPages int64 `yaml:"max_pages"`

	// LogTarget names the device wrapped by the write log; empty
	// means no log wrapper.
	LogTarget  string `yaml:"log_target"`
	LogEnabled bool   `yaml:"log_enabled"`

	Address string  `yaml:"address"`
	Archive Archive `yaml:"archive"`
}

func Default() Config {
	return Config{
		NumDisks:        DefaultNumDisks,
		NumSnapshots:    DefaultNumSnapshots,
		CapacitySectors: DefaultSizeKB * 1024 / page.SectorSize,
		Address:         DefaultAddress,
	}
}

// Load reads YAML file on top of the defaults and validates the
// result.
func Load(path string) (Config, error) {
	c := Default()
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return c, Error.Wrap(err)
	}
	if err = yaml.Unmarshal(b, &c); err != nil {
		return c, Error.Wrap(err)
	}
	return c, c.Validate()
}

func (self Config) Validate() error {
	switch {
	case self.NumDisks < 1:
		return Error.New("num_disks must be positive: %d", self.NumDisks)
	case self.NumSnapshots < 0:
		return Error.New("num_snapshots must not be negative: %d", self.NumSnapshots)
	case self.CapacitySectors == 0:
		return Error.New("capacity_sectors must be positive")
	case self.CapacitySectors%page.SectorsPerPage != 0:
		return Error.New("capacity_sectors must be multiple of %d: %d",
			page.SectorsPerPage, self.CapacitySectors)
	case self.MaxPages < 0:
		return Error.New("max_pages must not be negative: %d", self.MaxPages)
	case self.Archive.Salt != "" && self.Archive.Password == "":
		return Error.New("archive salt given without password")
	}
	return nil
}

// TotalDevices is the number of devices the configuration describes.
func (self Config) TotalDevices() int {
	return self.NumDisks * (1 + self.NumSnapshots)
}
