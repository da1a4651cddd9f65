// blockpack compresses files into block containers and back.
//
// Usage:
//
//	blockpack compress [flags] <input> [output]
//	blockpack decompress [flags] <input> [output]
//	blockpack verify [flags] <input>
//	blockpack inspect <input>
//
// compress writes <input>.lz4 unless an output path is given; decompress
// strips a trailing .lz4, or appends .out when there is none. verify
// compresses and decompresses the input and checks that nothing changed.
// With --file-list, compress, decompress and verify run over every file
// named in the list, using the default output names.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/andybalholm/blockpack"
	"github.com/andybalholm/blockpack/internal/config"
	"github.com/andybalholm/blockpack/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "blockpack: %v\n", err)
		os.Exit(1)
	}
}

// settings is the merged result of the config file and flags.
type settings struct {
	config.Config
	configPath string
	fileList   string
	verbose    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}
	command, args := args[0], args[1:]
	switch command {
	case "compress", "decompress", "verify":
	case "inspect":
		return runInspect(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", command)
	}

	s, paths, err := parseFlags(command, args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if s.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts, finish, err := options(logger, s)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := finish(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	if s.fileList == "" {
		output := ""
		if len(paths) > 1 {
			output = paths[1]
		}
		return runOne(ctx, logger, command, opts, paths[0], output, stdout)
	}

	inputs, err := readFileList(s.fileList)
	if err != nil {
		return err
	}
	// Every listed file is attempted; failures are reported together.
	var errs []error
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := runOne(ctx, logger, command, opts, input, "", stdout); err != nil {
			logger.Error(command+" failed", slog.String("input", input), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed: %w", len(errs), len(inputs), errors.Join(errs...))
	}
	return nil
}

// parseFlags parses args for command. Values from the config file apply
// unless the matching flag was given.
func parseFlags(command string, args []string, stderr io.Writer) (settings, []string, error) {
	var s settings
	var blockSize, codec, metricsFile string
	var level int
	var contentChecksum, verifyChecksum bool

	flagSet := pflag.NewFlagSet("blockpack "+command, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&s.configPath, "config", "", "YAML config file (default $"+config.EnvVar+")")
	flagSet.StringVarP(&blockSize, "block-size", "B", "", "block size class: 64KB, 256KB, 1MB or 4MB")
	flagSet.StringVar(&codec, "codec", "", "block codec: "+strings.Join(config.Codecs, ", "))
	flagSet.IntVarP(&level, "level", "l", 0, "codec compression level (0 = codec default)")
	flagSet.BoolVar(&contentChecksum, "content-checksum", false, "append an xxHash32 of the content")
	flagSet.BoolVar(&verifyChecksum, "verify-checksum", false, "reject containers whose header checksum is wrong")
	flagSet.StringVar(&metricsFile, "metrics-file", "", "write Prometheus text-format block metrics to this file")
	flagSet.StringVar(&s.fileList, "file-list", "", "process every file named in this file, one path per line")
	flagSet.BoolVarP(&s.verbose, "verbose", "v", false, "log every block")

	if err := flagSet.Parse(args); err != nil {
		return s, nil, err
	}

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return s, nil, err
	}
	if flagSet.Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if flagSet.Changed("codec") {
		cfg.Codec = codec
	}
	if flagSet.Changed("level") {
		cfg.Level = level
	}
	if flagSet.Changed("content-checksum") {
		cfg.ContentChecksum = contentChecksum
	}
	if flagSet.Changed("verify-checksum") {
		cfg.VerifyHeaderChecksum = verifyChecksum
	}
	if flagSet.Changed("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return s, nil, err
	}
	s.Config = cfg

	paths := flagSet.Args()
	if s.fileList != "" {
		if len(paths) > 0 {
			return s, nil, fmt.Errorf("%s: paths cannot be combined with --file-list", command)
		}
		return s, nil, nil
	}
	maxArgs := 2
	if command == "verify" {
		maxArgs = 1
	}
	if len(paths) == 0 || len(paths) > maxArgs {
		return s, nil, fmt.Errorf("%s takes 1 to %d paths, got %d", command, maxArgs, len(paths))
	}
	return s, paths, nil
}

// options builds blockpack options from s. The returned function releases
// the codec and writes the metrics file, if one is configured.
func options(logger *slog.Logger, s settings) (*blockpack.Options, func() error, error) {
	class, err := blockpack.ParseBlockSizeClass(s.BlockSize)
	if err != nil {
		return nil, nil, err
	}
	codec, closer, err := newCodec(s.Codec, s.Level)
	if err != nil {
		return nil, nil, err
	}

	opts := &blockpack.Options{
		BlockSize:            class,
		Codec:                codec,
		ContentChecksum:      s.ContentChecksum,
		VerifyHeaderChecksum: s.VerifyHeaderChecksum,
		Logger:               logger,
	}

	var registry *prometheus.Registry
	if s.MetricsFile != "" {
		collector := metrics.NewCollector()
		registry = prometheus.NewRegistry()
		if err := collector.Register(registry); err != nil {
			closer.Close()
			return nil, nil, err
		}
		opts.Observer = collector
	}

	finish := func() error {
		err := closer.Close()
		if registry != nil {
			if werr := prometheus.WriteToTextfile(s.MetricsFile, registry); werr != nil && err == nil {
				err = fmt.Errorf("writing metrics: %w", werr)
			}
		}
		return err
	}
	return opts, finish, nil
}

// runOne runs command on a single input. An empty output selects the
// default output name.
func runOne(ctx context.Context, logger *slog.Logger, command string, opts *blockpack.Options, input, output string, stdout io.Writer) error {
	switch command {
	case "compress":
		if output == "" {
			output = input + ".lz4"
		}
		n, err := blockpack.CompressFile(ctx, input, output, -1, opts)
		if err != nil {
			return err
		}
		logger.Info("compressed", slog.String("input", input), slog.String("output", output), slog.Int64("bytes", n))
		fmt.Fprintf(stdout, "%s -> %s (%d bytes)\n", input, output, n)

	case "decompress":
		if output == "" {
			output = strings.TrimSuffix(input, ".lz4")
			if output == input {
				output = input + ".out"
			}
		}
		n, err := blockpack.DecompressFile(ctx, input, output, -1, opts)
		if err != nil {
			return err
		}
		logger.Info("decompressed", slog.String("input", input), slog.String("output", output), slog.Int64("bytes", n))
		fmt.Fprintf(stdout, "%s -> %s (%d bytes)\n", input, output, n)

	case "verify":
		res, err := verifyFile(ctx, input, opts)
		if err != nil {
			return err
		}
		logger.Info("verified", slog.String("input", input), slog.Int64("bytes", res.Original), slog.Int64("compressed", res.Compressed))
		fmt.Fprintf(stdout, "PASSED %s (%d -> %d bytes)\n", input, res.Original, res.Compressed)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// runInspect takes no options: it only reads container structure.
func runInspect(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("blockpack inspect", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("inspect takes 1 path, got %d", flagSet.NArg())
	}
	path := flagSet.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return &blockpack.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	summary, err := blockpack.Inspect(f)
	if err != nil {
		return err
	}
	h := summary.Header
	fmt.Fprintf(stdout, "block size:       %v\n", h.BlockSize)
	fmt.Fprintf(stdout, "content size:     %d\n", h.ContentSize)
	fmt.Fprintf(stdout, "header checksum:  %#02x (valid: %t)\n", h.Checksum, h.ChecksumValid())
	fmt.Fprintf(stdout, "content checksum: %t\n", h.HasContentChecksum())
	for _, kind := range []blockpack.BlockKind{blockpack.Compressed, blockpack.RawFull, blockpack.RawPartial} {
		fmt.Fprintf(stdout, "%-17s %d\n", kind.String()+" blocks:", summary.Records[kind])
	}
	fmt.Fprintf(stdout, "stored bytes:     %d\n", summary.StoredBytes)
	fmt.Fprintf(stdout, "terminated:       %t\n", summary.Terminated)
	fmt.Fprintf(stdout, "container length: %d\n", summary.Len)
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `blockpack compresses files into block containers.

Usage:
  blockpack compress [flags] <input> [output]
  blockpack decompress [flags] <input> [output]
  blockpack verify [flags] <input>
  blockpack inspect <input>

compress, decompress and verify accept --file-list <path> in place of
paths. Run "blockpack <command> --help" for the flags of a command.
`)
}
