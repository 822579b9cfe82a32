/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2019 Markus Stenberg
 *
 * Created:       Wed Feb  6 11:55:05 2019 mstenber
 * Last modified: Mon Apr 15 11:40:02 2019 mstenber
 * Edit time:     8 min
 *
 */

package pb

import "github.com/fingon/go-cowbrd/wrapper"

func MetaFrom(m wrapper.Meta) *Meta {
	return &Meta{Flags: uint32(m.Flags), Sector: m.Sector, Size: m.Size,
		Time: m.Time, Seq: m.Seq}
}

func (m *Meta) Wrapper() wrapper.Meta {
	return wrapper.Meta{Flags: wrapper.OpFlags(m.Flags), Sector: m.Sector,
		Size: m.Size, Time: m.Time, Seq: m.Seq}
}
