// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/relabs-tech/telemetry_logger/internal/app"
)

func main() {
	flagSet := pflag.NewFlagSet("console", pflag.ExitOnError)
	replay := flagSet.String("replay", "", "print a captured serial log instead of the simulator")
	_ = flagSet.Parse(os.Args[1:])

	log.Println("starting telemetry console (no broker)")

	if err := app.RunMockConsole(*replay); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
