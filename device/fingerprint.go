/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Apr 11 09:30:12 2018 mstenber
 * Last modified: Wed Apr 11 10:02:47 2018 mstenber
 * Edit time:     21 min
 *
 */

package device

import (
	"sort"

	"github.com/cespare/xxhash"
	"github.com/fingon/go-cowbrd/page"
	"github.com/fingon/go-cowbrd/util"
)

// Fingerprint returns hash of the content visible through the
// device. Devices with same visible content have the same
// fingerprint regardless of how it is stored; all-zero pages hash
// the same as absent ones.
func (self *Device) Fingerprint() uint64 {
	indexes := make(map[uint64]struct{})
	collect := func(index uint64, _ *page.Page) {
		indexes[index] = struct{}{}
	}
	self.pages.ForEach(collect)
	if self.parent != nil {
		self.parent.pages.ForEach(collect)
	}
	sorted := make([]uint64, 0, len(indexes))
	for index := range indexes {
		sorted = append(sorted, index)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := xxhash.New()
	buf := make([]byte, page.Size)
	for _, index := range sorted {
		self.readChunk(index, 0, buf)
		if util.IsZero(buf) {
			continue
		}
		h.Write(util.Uint64Bytes(index))
		h.Write(buf)
	}
	return h.Sum64()
}
