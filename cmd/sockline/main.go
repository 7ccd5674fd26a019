// Command sockline sends a request to a line-oriented TCP endpoint and
// prints the reply lines, one read per newline in the request.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file")
		rawURL     = flag.String("url", "", "endpoint url, e.g. tcp://localhost:5000")
		request    = flag.String("request", "", `request payload; "\n" escapes are expanded`)
		timeout    = flag.Duration("timeout", 0, "per-operation budget, overrides the config file")
		repeat     = flag.Int("repeat", 0, "send the request this many times, overrides the config file")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *debug {
		log = log.Level(zerolog.DebugLevel)
	}

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("bad config")
		}
	}
	if *rawURL != "" {
		cfg.URL = *rawURL
	}
	if *request != "" {
		cfg.Request = strings.ReplaceAll(*request, `\n`, "\n")
		if !strings.HasSuffix(cfg.Request, "\n") {
			cfg.Request += "\n"
		}
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *repeat > 0 {
		cfg.Repeat = *repeat
	}
	if err := cfg.validate(); err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}

	cl, err := cfg.client()
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.URL).Msg("bad endpoint")
	}
	cl.Logger = log

	defer cl.Close()

	ctx := context.Background()
	n := strings.Count(cfg.Request, "\n")
	start := time.Now()

	for i := 0; i < cfg.Repeat; i++ {
		lines, err := cl.WriteReadLines(ctx, []byte(cfg.Request), n)
		if err != nil {
			log.Fatal().Err(err).Str("endpoint", cl.Addr()).Msg("request failed")
		}
		for _, line := range lines {
			fmt.Print(string(line))
		}
	}

	log.Debug().
		Str("endpoint", cl.Addr()).
		Dur("elapsed", time.Since(start)).
		Uint64("connections", cl.ConnectionCount()).
		Msg("done")
}
