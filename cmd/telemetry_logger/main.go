// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/relabs-tech/telemetry_logger/internal/app"
	"github.com/relabs-tech/telemetry_logger/internal/config"
)

func main() {
	var (
		configPath string
		opts       app.LoggerOptions
	)

	flagSet := pflag.NewFlagSet("telemetry_logger", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "telemetry_config.txt", "path to KEY=VALUE config file")
	flagSet.StringVar(&opts.ReplayPath, "replay", "", "replay a captured serial log instead of reading the port")
	flagSet.BoolVar(&opts.Simulate, "simulate", false, "feed synthetic sensor lines instead of reading the port")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: telemetry_logger [flags]\n\n%s", flagSet.FlagUsages())
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("fatal: %v", err)
	}
	if opts.ReplayPath != "" && opts.Simulate {
		log.Fatalf("fatal: --replay and --simulate are mutually exclusive")
	}

	log.Println("starting telemetry logger (serial → CSV/MQTT)")

	if err := config.InitGlobal(configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunLogger(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
