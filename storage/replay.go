/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Sat Apr 14 14:02:11 2018 mstenber
 * Last modified: Sat Apr 14 14:38:40 2018 mstenber
 * Edit time:     21 min
 *
 */

package storage

import (
	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/wrapper"
)

// AllEntries makes Replay apply every entry.
const AllEntries = ^uint64(0)

// Replay submits the logged operations to target in order, stopping
// at checkpoint number checkpoint. The result is the state the
// logged device was in when the checkpoint was taken. Checkpoint
// entries after clear of the log restart numbering, so entries
// should come from single log generation.
//
// Returns the number of operations applied. Unknown checkpoint is
// NotFound, and nothing is applied in that case.
func Replay(entries []*wrapper.Entry, target device.Target, checkpoint uint64) (n int, err error) {
	end := len(entries)
	if checkpoint != AllEntries {
		end = -1
		for i, e := range entries {
			if e.IsCheckpoint() && e.Sector == checkpoint {
				end = i
				break
			}
		}
		if end < 0 {
			return 0, device.NotFound.New("checkpoint %d", checkpoint)
		}
	}
	for _, e := range entries[:end] {
		req := e.Request()
		if req == nil {
			continue
		}
		if err = target.Submit(req); err != nil {
			mlog.Printf2("storage/replay", "Replay %v failed: %v", &e.Meta, err)
			return
		}
		n++
	}
	mlog.Printf2("storage/replay", "Replay applied %d entries to %s", n, target.Name())
	return
}
