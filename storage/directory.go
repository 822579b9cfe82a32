/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 15:55:15 2018 mstenber
 * Last modified: Sat Apr 14 13:22:07 2018 mstenber
 * Edit time:     37 min
 *
 */

package storage

import (
	"os"
	"path/filepath"

	"github.com/fingon/go-cowbrd/mlog"
)

// DirectoryBackendBase is embedded by backends that live in a
// directory.
type DirectoryBackendBase struct {
	Dir string
}

func (self *DirectoryBackendBase) Init(config BackendConfiguration) error {
	if config.Directory == "" {
		return Error.New("directory not set")
	}
	self.Dir = config.Directory
	if err := os.MkdirAll(self.Dir, 0700); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Path returns path to name within the directory.
func (self *DirectoryBackendBase) Path(name string) string {
	return filepath.Join(self.Dir, name)
}

// BytesUsed returns the total size of the files in the directory.
func (self *DirectoryBackendBase) BytesUsed() (sum uint64) {
	filepath.Walk(self.Dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			sum += uint64(info.Size())
		}
		return nil
	})
	mlog.Printf2("storage/directory", "BytesUsed %s: %d", self.Dir, sum)
	return sum
}
