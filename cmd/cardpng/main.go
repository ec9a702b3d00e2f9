package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/flaneur2020/card-png/cardpng"
	"github.com/flaneur2020/card-png/cardpng/config"
	"github.com/flaneur2020/card-png/cardpng/logger"
	"github.com/flaneur2020/card-png/cardpng/pngutil"
	"github.com/flaneur2020/card-png/cardpng/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	keyword    string
	outputPath string
	appendCard bool
	workers    int
	noProgress bool
	exportPath string

	cfg *config.Config
	fs  = afero.NewOsFs()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cardpng",
		Short:         "Read and write character cards embedded in PNG images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ./cardpng.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: silent, error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&keyword, "keyword", "", "tEXt keyword holding the card (default ccv3)")

	// extract command
	extractCmd := &cobra.Command{
		Use:   "extract <IN.png>",
		Short: "Print the embedded card payload",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the payload to a file instead of stdout")

	// embed command
	embedCmd := &cobra.Command{
		Use:   "embed <IN.png> <PAYLOAD.json>",
		Short: "Embed a card payload into a PNG image",
		Args:  cobra.ExactArgs(2),
		RunE:  runEmbed,
	}
	embedCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output PNG path (required)")
	embedCmd.Flags().BoolVar(&appendCard, "append", false, "Keep existing card chunks instead of replacing them")
	embedCmd.MarkFlagRequired("output")

	// strip command
	stripCmd := &cobra.Command{
		Use:   "strip <IN.png>",
		Short: "Remove embedded card chunks from a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE:  runStrip,
	}
	stripCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output PNG path (required)")
	stripCmd.MarkFlagRequired("output")

	// chunks command
	chunksCmd := &cobra.Command{
		Use:   "chunks <IN.png>",
		Short: "List the chunks of a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE:  runChunks,
	}

	// info command
	infoCmd := &cobra.Command{
		Use:   "info <IN.png>",
		Short: "Summarize the character card of a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	// scan command
	scanCmd := &cobra.Command{
		Use:   "scan <DIR>",
		Short: "Extract cards from every PNG below a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	scanCmd.Flags().IntVar(&workers, "workers", 0, "Number of images scanned concurrently")
	scanCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar (progress is enabled by default)")
	scanCmd.Flags().StringVar(&exportPath, "export", "", "Write found cards as JSON Lines (zstd-compressed when the name ends in .zst)")

	rootCmd.AddCommand(extractCmd, embedCmd, stripCmd, chunksCmd, infoCmd, scanCmd)
	return rootCmd
}

// setup loads the config and lets command line flags override it.
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if keyword != "" {
		cfg.Keyword = keyword
	}
	if cmd.Flags().Changed("append") {
		cfg.Append = appendCard
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if noProgress {
		cfg.Progress = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLogLevel(level)
	return nil
}

func readPNG(path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	stream, err := readPNG(args[0])
	if err != nil {
		return err
	}

	payload, found, err := cardpng.ExtractKeyword(stream, cfg.Keyword)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no %q card found in %s", cfg.Keyword, args[0])
	}

	if outputPath != "" {
		return writeFile(outputPath, []byte(payload))
	}
	fmt.Fprintln(cmd.OutOrStdout(), payload)
	return nil
}

func runEmbed(cmd *cobra.Command, args []string) error {
	stream, err := readPNG(args[0])
	if err != nil {
		return err
	}
	payload, err := afero.ReadFile(fs, args[1])
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	if !json.Valid(payload) {
		logger.Warn("payload %s is not valid JSON; embedding it as text", args[1])
	}

	var out []byte
	if cfg.Append {
		out, err = cardpng.EmbedKeyword(stream, cfg.Keyword, string(payload))
	} else {
		out, err = cardpng.ReplaceKeyword(stream, cfg.Keyword, string(payload))
	}
	if err != nil {
		return err
	}
	if err := writeFile(outputPath, out); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d byte payload into %s (%d -> %d bytes)\n",
		len(payload), outputPath, len(stream), len(out))
	return nil
}

func runStrip(cmd *cobra.Command, args []string) error {
	stream, err := readPNG(args[0])
	if err != nil {
		return err
	}

	out, removed, err := cardpng.Strip(stream, cfg.Keyword)
	if err != nil {
		return err
	}
	if err := writeFile(outputPath, out); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %q chunk(s), wrote %s\n", removed, cfg.Keyword, outputPath)
	return nil
}

func runChunks(cmd *cobra.Command, args []string) error {
	stream, err := readPNG(args[0])
	if err != nil {
		return err
	}

	chunks, err := pngutil.Chunks(stream)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Chunks in %s:\n", args[0])
	for i, c := range chunks {
		status := "ok"
		if !c.Verify() {
			status = "BAD CRC"
		}
		line := fmt.Sprintf("%d: %s at %d (length: %d, crc: %08x %s)", i, c.Type, c.Offset, c.Length, c.CRC, status)
		if c.Type == pngutil.TypeTEXT {
			if key, _, ok := pngutil.SplitText(c.Data); ok {
				line += fmt.Sprintf(" keyword=%q", key)
			} else {
				line += " (no keyword separator)"
			}
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	stream, err := readPNG(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ihdr, found, err := pngutil.FindChunk(stream, pngutil.ChunkType{'I', 'H', 'D', 'R'}); err == nil && found && ihdr.Length >= 8 {
		fmt.Fprintf(w, "Image: %dx%d\n", binary.BigEndian.Uint32(ihdr.Data[0:4]), binary.BigEndian.Uint32(ihdr.Data[4:8]))
	}

	card, err := cardpng.ExtractCard(stream)
	if err != nil {
		return err
	}

	summary, err := json.MarshalIndent(card.Summary(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(summary))
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store := storage.NewFsStorage(fs, args[0])

	// An explicit --keyword restricts the scan; otherwise both card versions are tried.
	scanKeyword := ""
	if keyword != "" {
		scanKeyword = cfg.Keyword
	}
	scanner := cardpng.NewScanner(store, cardpng.ScanOptions{
		Workers: cfg.Workers,
		Keyword: scanKeyword,
	})

	var progress cardpng.ProgressCallback
	var bar *progressbar.ProgressBar
	if cfg.Progress {
		progress = func(current, total int64) {
			if bar == nil && total > 0 {
				bar = progressbar.DefaultBytes(total, "Scanning cards")
			}
			if bar != nil {
				bar.Set64(current)
			}
		}
	}

	results, stats, err := scanner.Scan(ctx, progress)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s: error: %v\n", r.Name, r.Err)
		case r.Found && r.Card != nil:
			dup := ""
			if r.Duplicate {
				dup = " (duplicate)"
			}
			fmt.Fprintf(w, "%s: %q [%s]%s\n", r.Name, r.Card.Data.Name, r.Keyword, dup)
		}
	}

	if exportPath != "" {
		f, err := fs.Create(exportPath)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		n, err := cardpng.Export(f, results, cardpng.ExportOptions{
			Compress: strings.HasSuffix(exportPath, ".zst"),
		})
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Exported %d record(s) to %s\n", n, exportPath)
	}

	fmt.Fprintf(w, "Scanned %d files (%d bytes): %d cards, %d without card",
		stats.TotalFiles, stats.TotalBytes, stats.Cards, stats.NoCard)
	if stats.Failed > 0 {
		fmt.Fprintf(w, " (%d failed)", stats.Failed)
	}
	if stats.Duplicates > 0 {
		fmt.Fprintf(w, " (%d duplicates)", stats.Duplicates)
	}
	fmt.Fprintln(w)
	return nil
}
