// Command cipherfs mounts an additive-byte-shift overlay: every byte
// written through the mount point is shifted by a fixed key before it
// touches the backing file, and shifted back on read (spec.md §4.6).
// Grounded on main() in original_source/caesarfs.c, including that
// program's choice to forward no fuse options past the mount point. Unlike
// caesarfs.c, it rejects non-absolute directory arguments through
// cliutil.Parse, as the other two binaries do.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/scttfrdmn/versfs/internal/cipher"
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
	if len(args) < 3 {
		return cliutil.Usage(argv[0], "<storage directory> <mount point> <caesar shift>")
	}

	parsed, err := cliutil.Parse(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	key, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: invalid caesar shift %q\n", args[2])
		return 1
	}
	cliutil.LogMount(os.Stderr, parsed.BackingDir, parsed.MountPoint, strconv.Itoa(key))

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

	engine := overlay.New(parsed.BackingDir, cipher.NewShift(key), nil)
	host := fuse.NewHost(engine, parsed.MountPoint, utils.Default(), collector)
	if err := host.Mount(nil); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return 1
	}
	return 0
}

func collectorConfig(addr string) *metrics.Config {
	if addr == "" {
		return nil
	}
	return &metrics.Config{Enabled: true, Port: portFrom(addr), Namespace: "cipherfs"}
}

func portFrom(addr string) int {
	var port int
	fmt.Sscanf(addr, ":%d", &port)
	return port
}
