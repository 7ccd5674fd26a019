package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sockline/sockline/socklinelib"
)

type fileConfig struct {
	URL               string `toml:"url"`
	Request           string `toml:"request"`
	Timeout           string `toml:"timeout"`
	ConnectionTimeout string `toml:"connection_timeout"`
	NoDelay           bool   `toml:"no_delay"`
	AutoReconnect     bool   `toml:"auto_reconnect"`
	RetryAttempts     int    `toml:"retry_attempts"`
	Repeat            int    `toml:"repeat"`

	KeepAlive struct {
		Enable   bool   `toml:"enable"`
		Idle     string `toml:"idle"`
		Interval string `toml:"interval"`
		Count    int    `toml:"count"`
	} `toml:"keepalive"`
}

type config struct {
	URL               string
	Request           string
	Timeout           time.Duration
	ConnectionTimeout time.Duration
	NoDelay           bool
	AutoReconnect     bool
	RetryAttempts     int
	Repeat            int
	KeepAlive         *socklinelib.KeepAlive
}

func defaultConfig() config {
	return config{
		Request:       "*IDN?\n",
		Timeout:       5 * time.Second,
		NoDelay:       true,
		AutoReconnect: true,
		Repeat:        1,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("url") {
		cfg.URL = strings.TrimSpace(raw.URL)
	}
	if meta.IsDefined("request") {
		cfg.Request = raw.Request
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("connection_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ConnectionTimeout))
		if err != nil {
			return config{}, fmt.Errorf("parse connection_timeout: %w", err)
		}
		cfg.ConnectionTimeout = d
	}
	if meta.IsDefined("no_delay") {
		cfg.NoDelay = raw.NoDelay
	}
	if meta.IsDefined("auto_reconnect") {
		cfg.AutoReconnect = raw.AutoReconnect
	}
	if meta.IsDefined("retry_attempts") {
		cfg.RetryAttempts = raw.RetryAttempts
	}
	if meta.IsDefined("repeat") {
		cfg.Repeat = raw.Repeat
	}

	if meta.IsDefined("keepalive") {
		ka := &socklinelib.KeepAlive{Enable: raw.KeepAlive.Enable, Count: raw.KeepAlive.Count}
		if raw.KeepAlive.Idle != "" {
			d, err := time.ParseDuration(strings.TrimSpace(raw.KeepAlive.Idle))
			if err != nil {
				return config{}, fmt.Errorf("parse keepalive.idle: %w", err)
			}
			ka.Idle = d
		}
		if raw.KeepAlive.Interval != "" {
			d, err := time.ParseDuration(strings.TrimSpace(raw.KeepAlive.Interval))
			if err != nil {
				return config{}, fmt.Errorf("parse keepalive.interval: %w", err)
			}
			ka.Interval = d
		}
		cfg.KeepAlive = ka
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("config: missing url")
	}
	if !strings.Contains(c.Request, "\n") {
		return fmt.Errorf("config: request must end with a newline")
	}
	if c.Repeat < 1 {
		return fmt.Errorf("config: repeat must be at least 1")
	}
	return nil
}

// client builds a configured client from the resolved settings.
func (c config) client() (*socklinelib.Client, error) {
	cl, err := socklinelib.ForURL(c.URL)
	if err != nil {
		return nil, err
	}
	cl.Timeout = c.Timeout
	cl.ConnectionTimeout = c.ConnectionTimeout
	cl.NoDelay = c.NoDelay
	cl.AutoReconnect = c.AutoReconnect
	cl.Retry.Attempts = c.RetryAttempts
	cl.KeepAlive = c.KeepAlive
	return cl, nil
}
