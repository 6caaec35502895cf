package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/caasmo/phtunnel"
	"github.com/caasmo/phtunnel/core"
)

func main() {
	configPath := flag.String("config", "", "Path to the TOML configuration file (defaults and environment only when empty)")
	useServeMux := flag.Bool("servemux", false, "Use the standard library ServeMux router instead of httprouter")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config phtunnel.toml] [-servemux]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var opts []core.Option
	if *useServeMux {
		opts = append(opts, phtunnel.WithRouterServeMux())
	}

	_, srv, err := phtunnel.New(*configPath, opts...)
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	srv.Run()
}
