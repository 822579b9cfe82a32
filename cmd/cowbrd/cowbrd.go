/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Dec 29 13:18:26 2017 mstenber
 * Last modified: Mon Apr 16 10:21:12 2018 mstenber
 * Edit time:     104 min
 *
 */

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/fingon/go-cowbrd/config"
	"github.com/fingon/go-cowbrd/mlog"
	"github.com/fingon/go-cowbrd/registry"
	"github.com/fingon/go-cowbrd/server"
	"github.com/fingon/go-cowbrd/storage/factory"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n\n%s [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "YAML configuration file")
	address := flag.String("address", "", "Address to serve the harness at (overrides config)")
	logTarget := flag.String("logtarget", "", "Device whose writes are logged (overrides config)")
	logEnabled := flag.Bool("log", false, "Start with logging enabled")
	maxPages := flag.Int64("maxpages", -1, "Page budget across all devices (0 = unlimited; overrides config)")
	backend := flag.String("archive", "",
		fmt.Sprintf("Archive backend for the log at shutdown (possible: %v)", factory.List()))
	archiveDir := flag.String("archivedir", "", "Archive directory")
	password := flag.String("password", "", "Archive password")
	cpuprofile := flag.String("cpuprofile", "", "CPU profile file")
	memprofile := flag.String("memprofile", "", "Memory profile file")
	profile := flag.Bool("profile", false, "Whether to enable profiling 'bonus stuff'")
	flag.Parse()

	c := config.Default()
	if *configPath != "" {
		var err error
		c, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *address != "" {
		c.Address = *address
	}
	if *logTarget != "" {
		c.LogTarget = *logTarget
	}
	if *logEnabled {
		c.LogEnabled = true
	}
	if *maxPages >= 0 {
		c.MaxPages = *maxPages
	}
	if *backend != "" {
		c.Archive.Backend = *backend
		c.Archive.Directory = *archiveDir
	}
	if *password != "" {
		c.Archive.Password = *password
	}

	if *profile {
		runtime.SetBlockProfileRate(1000)    // microsecond
		runtime.SetMutexProfileFraction(100) // 1/100 is enough
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	r, err := registry.New(c)
	if err != nil {
		log.Fatal(err)
	}
	serv, err := server.Server{Registry: r, Address: c.Address}.Init()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d devices, harness at %s", len(r.Devices()), serv.Addr())

	// loop is here
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigs
	mlog.Printf2("cmd/cowbrd/cowbrd", "got %v", sig)

	// then close things in order (rather get things cleared
	// before we get out for memory profiling etc)
	serv.Close()
	if w := r.Wrapper(); w != nil && c.Archive.Backend != "" {
		a, err := factory.NewArchive(c.Archive)
		if err != nil {
			log.Fatal(err)
		}
		n, err := a.Drain(w.Log())
		if err != nil {
			log.Print(err)
		}
		log.Printf("archived %d log entries", n)
		a.Close()
	}
	r.Close()

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
