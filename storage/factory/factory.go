/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 12:22:52 2018 mstenber
 * Last modified: Sat Apr 14 16:05:12 2018 mstenber
 * Edit time:     47 min
 *
 */

package factory

import (
	"sort"

	"github.com/fingon/go-cowbrd/codec"
	"github.com/fingon/go-cowbrd/config"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/storage/badger"
	"github.com/fingon/go-cowbrd/storage/bolt"
	"github.com/fingon/go-cowbrd/storage/inmemory"
)

type factoryCallback func() storage.Backend

var backendFactories = map[string]factoryCallback{
	"inmemory": inmemory.NewInMemoryBackend,
	"badger":   badger.NewBadgerBackend,
	"bolt":     bolt.NewBoltBackend,
}

const defaultSalt = "cowbrd"

// List returns the names of the available backends, sorted.
func List() []string {
	keys := make([]string, 0, len(backendFactories))
	for k := range backendFactories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func New(name, dir string) (storage.Backend, error) {
	return NewWithConfig(name, storage.BackendConfiguration{Directory: dir})
}

func NewWithConfig(name string, config storage.BackendConfiguration) (storage.Backend, error) {
	mlog.Printf2("storage/factory/factory", "f.NewWithConfig %v %v", name, config)
	cb, ok := backendFactories[name]
	if !ok {
		return nil, storage.Error.New("unknown backend %q", name)
	}
	be := cb()
	if err := be.Init(config); err != nil {
		return nil, err
	}
	return be, nil
}

// NewArchive opens archive as described by the configuration. The
// payloads are always compressed, and also encrypted if password is
// set.
func NewArchive(c config.Archive) (*storage.Archive, error) {
	be, err := New(c.Backend, c.Directory)
	if err != nil {
		return nil, err
	}
	salt := c.Salt
	if salt == "" {
		salt = defaultSalt
	}
	mlog.Printf2("storage/factory/factory", " encryption:%v", c.Password != "")
	cd := codec.New([]byte(c.Password), []byte(salt))
	return storage.Archive{Backend: be, Codec: cd}.Init(), nil
}
