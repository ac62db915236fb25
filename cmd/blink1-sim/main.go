// Command blink1-sim runs emulated blink(1) devices on a virtual USB bus and
// drives them through the host library from an interactive prompt.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "blink1-sim.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "blink1-sim.yaml", "Path to configuration file (shorthand)")
	level := flag.String("log-level", "", "Override the configured log level")
	eeprom := flag.String("eeprom", "", "EEPROM image file for the first device")
	flag.Parse()

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if *eeprom != "" {
		cfg.Devices[0].EEPROM = *eeprom
	}
	setupLogging(cfg.Log.Level, cfg.Log.UseJSON, cfg.Log.Colors)

	sim, err := NewSim(cfg, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulator")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim.Start(ctx)
	log.Info().Int("devices", len(cfg.Devices)).Msg("simulator running, type help")

	if err := sim.Repl(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Prompt failed")
	}
	sim.Close()
	if err := sim.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to save eeprom images")
	}
}

func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05.000",
			NoColor:    !colors,
		})
	}

	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
