/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Mon Apr 16 11:02:20 2018 mstenber
 * Last modified: Mon Apr 16 13:40:55 2018 mstenber
 * Edit time:     72 min
 *
 */

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/fatih/color"
	"github.com/fingon/go-cowbrd/util"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/ugorji/go/codec"
)

// dataPreview is how many payload bytes are shown in dumps.
const dataPreview = 16

type dumpEntry struct {
	Seq        uint64 `codec:"seq"`
	Flags      string `codec:"flags"`
	Sector     uint64 `codec:"sector"`
	Size       uint32 `codec:"size"`
	Time       string `codec:"time"`
	Checkpoint bool   `codec:"checkpoint,omitempty"`
	Zero       bool   `codec:"zero,omitempty"`
	Data       string `codec:"data,omitempty"`
}

func entryEnv(e *wrapper.Entry) map[string]interface{} {
	return map[string]interface{}{
		"seq":        int(e.Seq),
		"sector":     int(e.Sector),
		"size":       int(e.Size),
		"time":       int(e.Time),
		"flags":      e.Flags.String(),
		"checkpoint": e.IsCheckpoint(),
		"write":      e.Flags&wrapper.FlagWrite != 0,
		"discard":    e.Flags&(wrapper.FlagDiscard|wrapper.FlagSecureErase) != 0,
		"zeroes":     e.Flags&wrapper.FlagWriteZeroes != 0,
		"flush":      e.Flags&wrapper.FlagFlush != 0,
		"fua":        e.Flags&wrapper.FlagFUA != 0,
		"meta":       e.Flags&wrapper.FlagMeta != 0,
	}
}

// Filter selects entries using expr expression over the fields of
// entryEnv, e.g. `write && sector >= 8`.
type Filter struct {
	program *vm.Program
}

func NewFilter(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(entryEnv(&wrapper.Entry{})), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return &Filter{program: program}, nil
}

func (self *Filter) Match(e *wrapper.Entry) (bool, error) {
	if self == nil {
		return true, nil
	}
	out, err := expr.Run(self.program, entryEnv(e))
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

type Dumper struct {
	Writer io.Writer
	Filter *Filter
	Color  bool

	jh codec.JsonHandle
}

func (self *Dumper) colorOf(e *wrapper.Entry) *color.Color {
	switch {
	case e.IsCheckpoint():
		return color.New(color.FgYellow, color.Bold)
	case e.Flags&wrapper.FlagWrite != 0:
		return color.New(color.FgGreen)
	case e.Flags&(wrapper.FlagDiscard|wrapper.FlagSecureErase|wrapper.FlagWriteZeroes) != 0:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}

// Dump writes e as single JSON line if it matches the filter.
// Returns true if it was written.
func (self *Dumper) Dump(e *wrapper.Entry) (bool, error) {
	ok, err := self.Filter.Match(e)
	if !ok || err != nil {
		return false, err
	}
	de := dumpEntry{Seq: e.Seq, Flags: e.Flags.String(), Sector: e.Sector,
		Size: e.Size, Checkpoint: e.IsCheckpoint(),
		Time: time.Unix(0, e.Time).UTC().Format(time.RFC3339Nano)}
	if len(e.Data) > 0 {
		de.Zero = util.IsZero(e.Data)
		de.Data = hex.EncodeToString(e.Data[:util.IMin(len(e.Data), dataPreview)])
	}
	var b []byte
	if err = codec.NewEncoderBytes(&b, &self.jh).Encode(&de); err != nil {
		return false, err
	}
	line := string(b)
	if self.Color {
		c := self.colorOf(e)
		c.EnableColor()
		line = c.Sprint(line)
	}
	_, err = fmt.Fprintln(self.Writer, line)
	return err == nil, err
}
