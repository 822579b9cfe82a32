/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Jan  5 11:14:11 2018 mstenber
 * Last modified: Sat Apr 14 13:10:51 2018 mstenber
 * Edit time:     19 min
 *
 */

package storage

// Backend persists opaque records in the order they were appended.
// Records are addressed by sequence number assigned at append time;
// the numbers grow monotonically until Clear.
type Backend interface {
	// Init makes the instance actually useful.
	Init(config BackendConfiguration) error

	// Close the backend.
	Close()

	// Append stores record, returning its sequence number.
	Append(record []byte) (seq uint64, err error)

	// Iterate calls cb for every record in sequence order. The
	// record is valid only for the duration of the call. Error
	// from cb stops the iteration and is returned.
	Iterate(cb func(seq uint64, record []byte) error) error

	// Count returns the number of records.
	Count() int

	// Clear removes every record.
	Clear() error
}

type BackendConfiguration struct {
	// Directory is where on-disk backends keep their files.
	Directory string
}
