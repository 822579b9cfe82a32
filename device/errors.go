/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr  9 14:01:10 2018 mstenber
 * Last modified: Thu Apr 12 09:44:31 2018 mstenber
 * Edit time:     14 min
 *
 */

package device

import (
	"strings"

	"github.com/zeebo/errs"
)

// Error kinds reported to callers. None of them is retried
// internally; use e.g. NotWritable.Has(err) to check.
var (
	// NotWritable: write or discard to frozen device.
	NotWritable = errs.Class("not writable")

	// InvalidState: control command on device of the wrong kind.
	InvalidState = errs.Class("invalid state")

	// OutOfRange: request past the device capacity.
	OutOfRange = errs.Class("out of range")

	// OutOfMemory: page allocation failed.
	OutOfMemory = errs.Class("out of memory")

	// WouldBlock: page allocation failed for non-blocking request;
	// caller may retry later.
	WouldBlock = errs.Class("would block")

	// NoData: log cursor has nothing to read.
	NoData = errs.Class("no data")

	// NotFound: unknown device.
	NotFound = errs.Class("not found")
)

var kinds = map[string]*errs.Class{
	"not_writable":  &NotWritable,
	"invalid_state": &InvalidState,
	"out_of_range":  &OutOfRange,
	"out_of_memory": &OutOfMemory,
	"would_block":   &WouldBlock,
	"no_data":       &NoData,
	"not_found":     &NotFound,
}

// KindOf returns short name of the error kind of err, or "" if it
// is not one of ours.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for name, class := range kinds {
		if class.Has(err) {
			return name
		}
	}
	return ""
}

// KindError recreates error of the named kind from its message (as
// produced by Error() of the original); unknown kinds produce plain
// error with the message.
func KindError(kind, msg string) error {
	class, ok := kinds[kind]
	if !ok {
		return errs.New("%s", msg)
	}
	return class.New("%s", strings.TrimPrefix(msg, string(*class)+": "))
}
