// Command versionfs mounts a snapshot-on-write overlay: every write first
// records the file's content as it will be after that write as a numbered
// snapshot under a per-file history directory, and unlinking a file
// reaps its entire history (spec.md §4.4–§4.5, §4.8). Grounded on main() in
// original_source/versfs.c.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/scttfrdmn/versfs/internal/cliutil"
	"github.com/scttfrdmn/versfs/internal/config"
	"github.com/scttfrdmn/versfs/internal/fuse"
	"github.com/scttfrdmn/versfs/internal/history"
	"github.com/scttfrdmn/versfs/internal/metrics"
	"github.com/scttfrdmn/versfs/internal/overlay"
	"github.com/scttfrdmn/versfs/pkg/utils"
)

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	fs := flag.NewFlagSet(argv[0], flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML layout override (optional)")
	metricsAddr := fs.String("metrics", "", "address to serve Prometheus metrics on, e.g. :9100 (disabled if empty)")
	if err := fs.Parse(argv[1:]); err != nil {
		return 1
	}
	args := fs.Args()
	if len(args) < 2 {
		return cliutil.Usage(argv[0], "<storage directory> <mount point> [ -d | -f | -s ]")
	}

	parsed, err := cliutil.Parse(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	cliutil.LogMount(os.Stderr, parsed.BackingDir, parsed.MountPoint, "")

	layout := config.Default()
	if *configPath != "" {
		layout, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return 1
		}
	}
	logLevel, err := utils.ParseLogLevel(layout.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	log := utils.NewLogger(logLevel, os.Stderr)

	collector, err := metrics.NewCollector(collectorConfig(*metricsAddr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	if err := collector.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	defer collector.Stop(context.Background())

	hook := history.NewHook(parsed.BackingDir, layout)
	engine := overlay.New(parsed.BackingDir, nil, hook)
	host := fuse.NewHost(engine, parsed.MountPoint, log, collector)
	if err := host.Mount(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	return 0
}

func collectorConfig(addr string) *metrics.Config {
	if addr == "" {
		return nil
	}
	return &metrics.Config{Enabled: true, Port: portFrom(addr), Namespace: "versionfs"}
}

func portFrom(addr string) int {
	var port int
	fmt.Sscanf(addr, ":%d", &port)
	return port
}
