// Command sigforge turns a disassembly listing into ranked, wildcarded
// byte-pattern signatures suitable for feeding into a pattern scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lookbusy1344/sig-forge/config"
	"github.com/lookbusy1344/sig-forge/httpapi"
	"github.com/lookbusy1344/sig-forge/sig/analyzer"
	"github.com/lookbusy1344/sig-forge/sig/export"
	"github.com/lookbusy1344/sig-forge/sig/generator"
	"github.com/lookbusy1344/sig-forge/sig/parser"
	"github.com/lookbusy1344/sig-forge/sig/smartanalyzer"
	"github.com/lookbusy1344/sig-forge/sig/types"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")

		inputFile  = flag.String("input", "", "Disassembly listing file to read (default: stdin)")
		formatHint = flag.String("format", "auto", "Input format: auto, x64dbg, cheatengine, hex")

		targets = flag.String("targets", "", "Comma-separated target identifiers (labels, jump@<addr>, call@<addr>, index)")
		special = flag.String("special", "", "Special target token: all, all_labeled, all_jumps, all_calls")

		smartMode = flag.Bool("smart", false, "Let the smart analyzer pick anchors instead of -targets/-special")
		topN      = flag.Int("top", 5, "Number of anchors the smart analyzer should pick (used with -smart)")

		strategy      = flag.String("strategy", "balanced", "Wildcarding strategy")
		minLength     = flag.Int("min-length", 0, "Minimum signature length in bytes (0: use config default)")
		maxLength     = flag.Int("max-length", 0, "Maximum signature length in bytes (0: use config default)")
		variants      = flag.Int("variants", 0, "Maximum signatures kept per target (0: use config default)")
		contextBefore = flag.Int("context-before", -1, "Instructions of leading context (-1: use config default)")
		contextAfter  = flag.Int("context-after", -1, "Instructions of trailing context (-1: use config default)")

		exportFormat = flag.String("export", "aob", "Output format: aob, mask, ida, cheatengine, cpp, x64dbg")
		configFile   = flag.String("config", "", "Config file path (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("sigforge %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
		os.Exit(1)
	}

	text, err := readInput(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
		os.Exit(1)
	}

	hint, err := parser.ParseFormatHint(*formatHint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
		os.Exit(1)
	}

	parsed, err := parser.Parse(text, hint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
		os.Exit(1)
	}

	instrs := analyzer.AnalyzeAll(parsed.Instructions)

	opts := optionsFromConfig(cfg, *minLength, *maxLength, *variants, *contextBefore, *contextAfter)
	strat := generator.Strategy(*strategy)

	format, err := export.ParseFormat(*exportFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
		os.Exit(1)
	}

	if *smartMode {
		res, err := smartanalyzer.SmartGenerate(instrs, *topN, strat, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(res.Report.Summary)
		printSignatures(res.Signatures, nil, format)
		return
	}

	sel := targetSelection(*targets, *special)
	res, err := generator.Generate(instrs, sel, strat, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sigforge: %v\n", err)
		os.Exit(1)
	}
	printSignatures(res.Signatures, res.Unresolved, format)
}

func targetSelection(targets, special string) generator.TargetSelection {
	if special != "" {
		return generator.ParseTargetToken(special)
	}
	var ids []string
	for _, t := range strings.Split(targets, ",") {
		if t = strings.TrimSpace(t); t != "" {
			ids = append(ids, t)
		}
	}
	return generator.Targets(ids...)
}

func optionsFromConfig(cfg *config.Config, minLength, maxLength, variants, contextBefore, contextAfter int) generator.Options {
	opts := generator.Options{
		MinLength:     cfg.Generator.MinLength,
		MaxLength:     cfg.Generator.MaxLength,
		Variants:      cfg.Generator.Variants,
		ContextBefore: cfg.Generator.ContextBefore,
		ContextAfter:  cfg.Generator.ContextAfter,
		WildcardRules: generator.WildcardRules{
			RelativeJumps:       cfg.Generator.RelativeJumps,
			RelativeCalls:       cfg.Generator.RelativeCalls,
			StackOffsets:        cfg.Generator.StackOffsets,
			GlobalAddresses:     cfg.Generator.GlobalAddresses,
			Immediates:          cfg.Generator.Immediates,
			StructOffsets:       cfg.Generator.StructOffsets,
			MemoryDisplacements: cfg.Generator.MemoryDisplacements,
		},
	}
	if minLength > 0 {
		opts.MinLength = minLength
	}
	if maxLength > 0 {
		opts.MaxLength = maxLength
	}
	if variants > 0 {
		opts.Variants = variants
	}
	if contextBefore >= 0 {
		opts.ContextBefore = contextBefore
	}
	if contextAfter >= 0 {
		opts.ContextAfter = contextAfter
	}
	return opts
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := readAllStdin()
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input file path
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func readAllStdin() (string, error) {
	var b strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			b.Write(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return b.String(), nil
}

// printSignatures writes one rendered signature per line, grouped by
// target and sorted by target identifier for deterministic output, with
// any unresolved targets and per-signature fail-soft warnings reported
// afterward rather than failing the whole run.
func printSignatures(sigs map[string][]types.Signature, unresolved []string, format export.Format) {
	ids := make([]string, 0, len(sigs))
	for id := range sigs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Printf("# %s\n", id)
		for _, sig := range sigs[id] {
			fmt.Printf("%s  (uniqueness=%.3f stability=%s strategy=%s)\n",
				export.Render(sig, format), sig.UniquenessScore, sig.Stability, sig.Strategy)
			if sig.Warning != "" {
				fmt.Printf("  warning: %s\n", sig.Warning)
			}
		}
	}

	for _, id := range unresolved {
		fmt.Fprintf(os.Stderr, "sigforge: target %q did not resolve\n", id)
	}
}

func printHelp() {
	fmt.Println("sigforge - derive rebuild-resilient byte signatures from a disassembly listing")
	fmt.Println()
	flag.PrintDefaults()
}

func runAPIServer(port int) {
	server := httpapi.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down sigforge API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("sigforge API server stopped")
			os.Exit(0)
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}
