// Package main provides the CLI entrypoint for cborgen.
//
// cborgen reads a C header, classifies each struct member into a wire
// category, orders structs so by-value dependencies come first, and writes
// paired CBOR encode/decode procedures as cbor_generated.h/.c.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cborgen/internal/config"
	"cborgen/internal/gen"
)

func main() {
	initLogger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("generation failed")
	}
}

func initLogger() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Str("app", "cborgen").Logger()
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML options file")
	outDir := flag.String("out", ".", "directory for the generated files")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("expected exactly one header file argument, got %d", flag.NArg())
	}

	headerPath := flag.Arg(0)

	opts := config.Default()

	if *configPath != "" {
		var err error

		opts, err = config.LoadFile(*configPath)
		if err != nil {
			return err
		}
	}

	src, err := os.ReadFile(headerPath)
	if err != nil {
		return fmt.Errorf("reading header %s: %w", headerPath, err)
	}

	files, diags, err := gen.Run(src, opts)

	for _, w := range diags.Warnings {
		log.Warn().Str("struct", w.Struct).Str("member", w.Member).Msg(w.Message)
	}

	for _, e := range diags.Errors {
		log.Error().Str("struct", e.Struct).Str("member", e.Member).Msg(e.Message)
	}

	if err != nil {
		return err
	}

	if err := gen.WriteFiles(files, *outDir); err != nil {
		return err
	}

	for _, f := range files {
		log.Info().Str("file", f.Filename).Str("dir", *outDir).Msg("generated")
	}

	return nil
}
