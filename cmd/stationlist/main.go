// Command stationlist resolves the stream-gage list for one state without
// the web UI, writing the same stations.txt and CSV exports as the server.
//
// Usage:
//
//	go run ./cmd/stationlist -state CA
//	go run ./cmd/stationlist -state AZ -parameter 00065 -data-dir /tmp/out
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/geokshitij/flowData/internal/adapter/nwis"
	"github.com/geokshitij/flowData/internal/config"
	"github.com/geokshitij/flowData/internal/domain"
	"github.com/geokshitij/flowData/internal/observability"
	"github.com/geokshitij/flowData/internal/resolver"
	"github.com/geokshitij/flowData/internal/store"
)

func main() {
	state := flag.String("state", "", "two-letter state code (required)")
	parameterCd := flag.String("parameter", domain.DefaultParameterCd, "NWIS parameter code")
	dataDir := flag.String("data-dir", "", "artifact directory (default: DATA_DIR or ./data)")
	flag.Parse()

	if err := run(*state, *parameterCd, *dataDir); err != nil {
		fmt.Fprintln(os.Stderr, "stationlist:", err)
		os.Exit(1)
	}
}

func run(state, parameterCd, dataDir string) error {
	state = strings.ToUpper(strings.TrimSpace(state))
	if len(state) != 2 {
		return fmt.Errorf("-state must be a two-letter code, got %q", state)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := store.New(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	client := nwis.NewClient(cfg.NWISSiteURL, cfg.NWISDailyURL, cfg.UpstreamTimeout, cfg.RequestsPerSecond, metrics, logger)
	res := resolver.New(client, st, metrics, logger)

	stations, err := res.Resolve(context.Background(), state, parameterCd)
	if err != nil {
		return err
	}
	if len(stations) == 0 {
		fmt.Printf("no stations found for %s\n", state)
		return nil
	}

	fmt.Printf("resolved %d stations for %s; exports written under %s\n",
		len(stations), state, cfg.DataDir)
	return nil
}
