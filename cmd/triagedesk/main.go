package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/triagedesk/internal/app"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (default ~/.config/triagedesk/config.toml)")
	apiURL := flag.String("api", "", "backend address, host:port or URL (overrides config)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	check := flag.Bool("check", false, "probe the backend, print a report and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("triagedesk", version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		APIURL:     *apiURL,
	}

	if *check {
		healthy, err := app.RunCheck(ctx, opts, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "triagedesk: %v\n", err)
			return 1
		}
		if !healthy {
			return 1
		}
		return 0
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "triagedesk: %v\n", err)
		return 1
	}
	return 0
}
