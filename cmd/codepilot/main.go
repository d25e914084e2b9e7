// Copyright (C) 2026 the codepilot authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// codepilot exposes a repository to an automated agent through a fixed
// vocabulary of tools: view a file window, search, edit line ranges, run
// a screened shell command. This command is a thin front end over the
// tool registry; the engine lives in internal/tools.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"codepilot/internal/config"
	"codepilot/internal/tools"
)

var (
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
	logFile    = flag.String("log", "", "Log file path (default: no logging)")
	configPath = flag.String("config", ".codepilot.json", "Path to the config file")
	workdir    = flag.String("workdir", "", "Working tree root (default: current directory)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Apply()

	logPath := *logFile
	if logPath == "" {
		logPath = cfg.LogFile
	}
	logger := initLogger(*debugMode, logPath)
	logger.Info().Msg("codepilot starting")

	registry, err := tools.NewRegistry(tools.Options{
		Workdir:    *workdir,
		WindowSize: cfg.WindowSize,
		Gateway:    cfg.GatewayConfig(),
		Logger:     logger.With().Str("component", "registry").Logger(),
	})
	if err != nil {
		log.Fatalf("Failed to build tool registry: %v", err)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		runBatch(registry, logger)
		return
	}
	runREPL(registry, cfg, logger)
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
