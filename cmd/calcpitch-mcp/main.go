package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/calcpitch-mcp/internal/analyzer"
	"github.com/ironsheep/calcpitch-mcp/internal/batch"
	"github.com/ironsheep/calcpitch-mcp/internal/config"
	"github.com/ironsheep/calcpitch-mcp/internal/geometry"
	"github.com/ironsheep/calcpitch-mcp/internal/logging"
	"github.com/ironsheep/calcpitch-mcp/internal/ocr"
	"github.com/ironsheep/calcpitch-mcp/internal/segment"
	"github.com/ironsheep/calcpitch-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("calcpitch-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Tesseract:  %s\n", ocr.Version())
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "init-config":
			os.Exit(initConfig(os.Args[2:]))
		}
	}

	cfg, err := config.LoadConfig(os.Getenv(config.EnvConfigPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "calcpitch-mcp: %v\n", err)
		os.Exit(2)
	}
	cfg.ApplyEnv(os.Getenv)

	// stdout is for the MCP protocol and batch JSON
	log := logging.New(cfg.Logging.Level, os.Stderr)
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("calcpitch-mcp starting")

	model := loadModel(cfg, log)
	defer model.Close()

	if len(os.Args) > 1 && os.Args[1] == "analyze" {
		code := analyze(cfg, log, model, os.Args[2:])
		model.Close()
		os.Exit(code)
	}

	an := newAnalyzer(cfg, log, model, false)
	opts := []server.Option{
		server.WithLogger(log),
		server.WithWindow(cfg.Analysis.Window),
		server.WithVersion(Version),
	}
	if cfg.Marker.Enabled {
		opts = append(opts, server.WithSideDetector(newSideReader(cfg, log)))
	}

	srv := server.New(an, opts...)
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func printHelp() {
	fmt.Println("calcpitch-mcp - MCP server for calcaneal pitch measurement")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  calcpitch-mcp                      Serve MCP over stdin/stdout")
	fmt.Println("  calcpitch-mcp analyze <files...>   Measure radiographs, JSON on stdout")
	fmt.Println("  calcpitch-mcp init-config <path>   Write a default config file")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=<file>        YAML configuration\n", config.EnvConfigPath)
	fmt.Printf("  %s=debug      Log level\n", config.EnvLogLevel)
	fmt.Printf("  %s=<file>         ONNX segmentation weights\n", config.EnvModelPath)
	fmt.Printf("  %s=<file>   onnxruntime shared library\n", config.EnvLibrary)
	fmt.Println()
	fmt.Println("Configure the server in your MCP client (e.g., Claude Desktop).")
}

func initConfig(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: calcpitch-mcp init-config <path>")
		return 2
	}
	if err := config.CreateDefaultConfigFile(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "calcpitch-mcp: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote default configuration to %s\n", args[0])
	return 0
}

// loadModel opens the segmentation network. A missing model is not fatal:
// the server still offers the geometry tools and reports model_unavailable
// for pitch_analyze.
func loadModel(cfg *config.Config, log logrus.FieldLogger) *segment.OnnxModel {
	model, err := segment.LoadONNX(segment.OnnxConfig{
		LibraryPath: cfg.Model.Library,
		ModelPath:   cfg.Model.Path,
		InputName:   cfg.Model.InputName,
		OutputName:  cfg.Model.OutputName,
		Size:        cfg.Model.InputSize,
		Sigmoid:     cfg.Model.Sigmoid,
		Threads:     cfg.Model.Threads,
	})
	if err != nil {
		log.WithError(err).Warn("segmentation model not loaded")
		return nil
	}
	log.WithField("model", cfg.Model.Path).Info("segmentation model loaded")
	return model
}

func newSideReader(cfg *config.Config, log logrus.FieldLogger) *ocr.SideReader {
	r := ocr.NewSideReader(
		ocr.WithLogger(log),
		ocr.WithMinConfidence(cfg.Marker.MinConfidence),
	)
	r.Language = cfg.Marker.Language
	r.MaxWidth = cfg.Marker.MaxWidth
	return r
}

func newAnalyzer(cfg *config.Config, log logrus.FieldLogger, model *segment.OnnxModel, withSide bool) *analyzer.Analyzer {
	policy, _ := geometry.ParseSplitPolicy(cfg.Analysis.SplitPolicy)
	opts := []analyzer.Option{
		analyzer.WithLogger(log),
		analyzer.WithSplitPolicy(policy),
		analyzer.WithKernelSize(cfg.Analysis.KernelSize),
		analyzer.WithGroundLength(cfg.Analysis.GroundLength),
		analyzer.WithAnnotation(cfg.Analysis.Annotate),
		analyzer.WithWindow(cfg.Analysis.Window),
	}
	if withSide && cfg.Marker.Enabled {
		opts = append(opts, analyzer.WithSideDetector(newSideReader(cfg, log)))
	}

	if model == nil {
		return analyzer.New(nil, opts...)
	}
	pipeline := segment.NewPipeline(model,
		segment.WithInputSize(cfg.Model.InputSize),
		segment.WithThreshold(cfg.Model.Threshold),
	)
	return analyzer.New(pipeline, opts...)
}

// analyze runs the batch worker over files and prints items and summary.
// The exit code is 1 when any file failed.
func analyze(cfg *config.Config, log logrus.FieldLogger, model *segment.OnnxModel, files []string) int {
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: calcpitch-mcp analyze <files...>")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	an := newAnalyzer(cfg, log, model, true)
	items := batch.NewItems(files)
	worker := batch.NewWorker(an, log)

	progress := func(done, total int) {
		log.WithField("progress", fmt.Sprintf("%d/%d", done, total)).Debug("batch progress")
	}
	finished := func(_ int, item batch.Item) {
		if item.Result == nil || item.Result.Annotated == nil {
			return
		}
		if err := writeAnnotated(item.Path, item.Result); err != nil {
			log.WithError(err).WithField("path", item.Path).Warn("cannot write annotated image")
		}
	}

	runErr := worker.Run(ctx, items, progress, finished)
	if runErr != nil {
		log.WithError(runErr).Warn("batch halted")
	}

	summary := batch.Summarize(items)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Items   []batch.Item  `json:"items"`
		Summary batch.Summary `json:"summary"`
	}{items, summary}); err != nil {
		log.WithError(err).Error("cannot write results")
		return 1
	}

	if summary.Failed > 0 || runErr != nil {
		return 1
	}
	return 0
}

// writeAnnotated saves the review image next to the source as
// <name>_pitch.png.
func writeAnnotated(src string, res *analyzer.Result) error {
	ext := filepath.Ext(src)
	dst := strings.TrimSuffix(src, ext) + "_pitch.png"

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := png.Encode(f, res.Annotated); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", dst, err)
	}
	return f.Close()
}
