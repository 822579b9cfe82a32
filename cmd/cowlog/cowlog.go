/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan 17 18:00:47 2018 mstenber
 * Last modified: Thu Apr 19 11:41:09 2018 mstenber
 * Edit time:     101 min
 *
 */

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/fingon/go-cowbrd/config"
	"github.com/fingon/go-cowbrd/connector"
	"github.com/fingon/go-cowbrd/device"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/storage"
	"github.com/fingon/go-cowbrd/storage/factory"
	"github.com/fingon/go-cowbrd/wrapper"
	"github.com/mattn/go-isatty"
)

const usage = `Usage:

%s [flags] COMMAND [ARGS]

Commands talking to the server:
  list | status
  freeze|unfreeze|restore|wipe|fingerprint ID
  logging on|off
  checkpoint | meta | data | advance | clear
  drain              archive the unread log entries
  write NAME SECTOR DATA
  read NAME SECTOR LENGTH
  discard NAME SECTOR LENGTH
  flush NAME         submit storage request to device NAME

Commands working on the archive:
  dump               write the entries as JSON lines
  replay CHECKPOINT  replay the entries onto empty device, print its fingerprint

`

type app struct {
	conn    *connector.Connector
	archive config.Archive

	filter   string
	color    string
	capacity uint64
}

func (self *app) openArchive() *storage.Archive {
	if self.archive.Backend == "" {
		log.Fatal("-archive not specified")
	}
	a, err := factory.NewArchive(self.archive)
	if err != nil {
		log.Fatal(err)
	}
	return a
}

func (self *app) useColor() bool {
	switch self.color {
	case "always":
		return true
	case "never":
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func deviceArg(args []string) int {
	if len(args) < 1 {
		log.Fatal("device id missing")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatal(err)
	}
	return id
}

func uintArg(args []string, i int, what string) uint64 {
	if len(args) <= i {
		log.Fatalf("%s missing", what)
	}
	v, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func (self *app) target(args []string) *connector.Target {
	if len(args) < 1 {
		log.Fatal("device name missing")
	}
	t, err := self.conn.Target(args[0])
	if err != nil {
		log.Fatal(err)
	}
	return t
}

func (self *app) run(cmd string, args []string) error {
	c := self.conn
	control := map[string]func(int) error{
		"freeze":   c.Freeze,
		"unfreeze": c.Unfreeze,
		"restore":  c.Restore,
		"wipe":     c.Wipe,
	}
	if cb, ok := control[cmd]; ok {
		return cb(deviceArg(args))
	}
	switch cmd {
	case "list":
		l, err := c.List()
		if err != nil {
			return err
		}
		for _, d := range l {
			fmt.Printf("%d %s capacity:%d snapshot:%v writable:%v pages:%d\n",
				d.Id, d.Name, d.CapacitySectors, d.Snapshot, d.Writable, d.Pages)
		}
	case "status":
		st, err := c.Status()
		if err != nil {
			return err
		}
		fmt.Printf("pages %d/%d log %q logging:%v entries:%d unread:%d\n",
			st.PagesUsed, st.PagesLimit, st.LogTarget, st.Logging,
			st.LogLength, st.LogUnread)
	case "fingerprint":
		fp, err := c.Fingerprint(deviceArg(args))
		if err != nil {
			return err
		}
		fmt.Printf("%016x\n", fp)
	case "logging":
		return c.SetLogging(len(args) > 0 && args[0] == "on")
	case "checkpoint":
		n, err := c.Checkpoint()
		if err != nil {
			return err
		}
		fmt.Println(n)
	case "meta":
		m, err := c.GetMeta()
		if err != nil {
			return err
		}
		fmt.Println(m.String())
	case "data":
		m, err := c.GetMeta()
		if err != nil {
			return err
		}
		buf := make([]byte, m.Size)
		n, err := c.GetData(buf)
		if err != nil {
			return err
		}
		os.Stdout.Write(buf[:n])
	case "write":
		if len(args) < 3 {
			log.Fatal("data missing")
		}
		return device.WriteAt(self.target(args), uintArg(args, 1, "sector"), []byte(args[2]))
	case "read":
		b, err := device.ReadAt(self.target(args), uintArg(args, 1, "sector"),
			int(uintArg(args, 2, "length")))
		if err != nil {
			return err
		}
		os.Stdout.Write(b)
	case "discard":
		return device.Discard(self.target(args), uintArg(args, 1, "sector"),
			int(uintArg(args, 2, "length")))
	case "flush":
		return device.Flush(self.target(args))
	case "advance":
		return c.Advance()
	case "clear":
		return c.ClearLog()
	case "drain":
		a := self.openArchive()
		defer a.Close()
		n, err := a.Drain(c)
		fmt.Printf("archived %d entries (%d total)\n", n, a.Len())
		return err
	case "dump":
		a := self.openArchive()
		defer a.Close()
		var f *Filter
		if self.filter != "" {
			var err error
			if f, err = NewFilter(self.filter); err != nil {
				return err
			}
		}
		d := &Dumper{Writer: os.Stdout, Filter: f, Color: self.useColor()}
		return a.Load(func(e *wrapper.Entry) error {
			_, err := d.Dump(e)
			return err
		})
	case "replay":
		checkpoint := storage.AllEntries
		if len(args) > 0 {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			checkpoint = n
		}
		a := self.openArchive()
		defer a.Close()
		entries, err := a.Entries()
		if err != nil {
			return err
		}
		d := device.New(device.Config{Name: "replay", CapacitySectors: self.capacity})
		n, err := storage.Replay(entries, d, checkpoint)
		if err != nil {
			return err
		}
		fmt.Printf("replayed %d operations, %d pages, fingerprint %016x\n",
			n, d.Pages(), d.Fingerprint())
	default:
		flag.Usage()
		os.Exit(1)
	}
	return nil
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		flag.PrintDefaults()
	}
	address := flag.String("address", config.DefaultAddress, "Address of the server")
	backend := flag.String("archive", "",
		fmt.Sprintf("Archive backend (possible: %v)", factory.List()))
	archiveDir := flag.String("archivedir", "", "Archive directory")
	password := flag.String("password", "", "Archive password")
	salt := flag.String("salt", "", "Archive salt")
	filter := flag.String("filter", "", "Expression selecting entries to dump, e.g. 'write && sector < 8'")
	colorMode := flag.String("color", "auto", "Colored dump output: auto, always or never")
	capacity := flag.Uint64("capacity", config.Default().CapacitySectors, "Replay device capacity in sectors")
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	a := &app{
		conn: connector.Connector{Address: *address}.Init(),
		archive: config.Archive{Backend: *backend, Directory: *archiveDir,
			Password: *password, Salt: *salt},
		filter:   *filter,
		color:    *colorMode,
		capacity: *capacity,
	}
	mlog.Printf2("cmd/cowlog/cowlog", "%v %v", flag.Arg(0), flag.Args()[1:])
	if err := a.run(flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatal(err)
	}
}
