// Command mirrorfs mounts a bit-identical passthrough overlay: every read,
// write, and metadata operation on the mount point is forwarded to the
// backing directory unchanged (spec.md §4.3). Grounded on main() in
// original_source/versfs.c with history disabled — mirrorfs is what versfs.c
// would be with vers_write's snapshot branch removed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/scttfrdmn/versfs/internal/cliutil"
	"github.com/scttfrdmn/versfs/internal/fuse"
	"github.com/scttfrdmn/versfs/internal/metrics"
	"github.com/scttfrdmn/versfs/internal/overlay"
	"github.com/scttfrdmn/versfs/pkg/utils"
)

func main() {
	os.Exit(run(os.Args))
}

func run(argv []string) int {
	fs := flag.NewFlagSet(argv[0], flag.ContinueOnError)
	metricsAddr := fs.String("metrics", "", "address to serve Prometheus metrics on, e.g. :9100 (disabled if empty)")
	if err := fs.Parse(argv[1:]); err != nil {
		return 1
	}
	args := fs.Args()
	if len(args) < 2 {
		return cliutil.Usage(argv[0], "<storage directory> <mount point> [fuse options...]")
	}

	parsed, err := cliutil.Parse(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	cliutil.LogMount(os.Stderr, parsed.BackingDir, parsed.MountPoint, "")

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

	engine := overlay.New(parsed.BackingDir, nil, nil)
	host := fuse.NewHost(engine, parsed.MountPoint, utils.Default(), collector)
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
	return &metrics.Config{Enabled: true, Port: portFrom(addr), Namespace: "mirrorfs"}
}

func portFrom(addr string) int {
	var port int
	fmt.Sscanf(addr, ":%d", &port)
	return port
}
