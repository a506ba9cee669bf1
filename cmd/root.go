package cmd

import (
	"fmt"
	"os"

	"github.com/sitelabel/annotator/internal/catalog"
	"github.com/sitelabel/annotator/internal/config"
	"github.com/sitelabel/annotator/internal/ffmpeg"
	"github.com/sitelabel/annotator/internal/logging"
	"github.com/sitelabel/annotator/internal/services"
	"github.com/sitelabel/annotator/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is the state shared by all subcommands of one invocation
type app struct {
	configPath string
	logLevel   string
	jsonLogs   bool

	cfg      *config.Config
	logger   *zap.Logger
	services *services.Services
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds a fresh command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "annotator",
		Short: "Segment annotation for construction-site footage",
		Long: `annotator manages per-video segment annotations for construction-site footage.

Each video under the video directory gets one JSON record under the annotation
directory, mirroring the folder layout. Segments carry in/out times (MM:SS.mmm),
a description, a noun and a verb from the shared vocabulary, and free tags.

Videos are addressed by their path relative to the video directory, for example
"batch-03/1.mp4".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsSetup(cmd) {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./config.yaml, $HOME/.annotator/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides log.level")
	rootCmd.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "enable JSON formatted logs")

	rootCmd.AddCommand(
		newVideosCmd(a),
		newSubfoldersCmd(a),
		newShowCmd(a),
		newNextCmd(a),
		newSegmentCmd(a),
		newStatusCmd(a),
		newExportCmd(a),
		newStatsCmd(a),
		newVocabCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}

func needsSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return false
	}
	return true
}

// setup loads the config and wires storage, catalog, ffmpeg and services
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.jsonLogs {
		cfg.Log.JSON = true
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	storageManager := storage.NewManager(
		cfg.Paths.VideoDir,
		cfg.Paths.AnnotationDir,
		cfg.Paths.ExportPath,
		cfg.Paths.VocabularyPath,
		logger,
	)
	if err := storageManager.Initialize(); err != nil {
		return err
	}

	videos := catalog.New(cfg.Paths.VideoDir, cfg.Catalog.Extension, logger)
	executor := ffmpeg.NewExecutor(cfg.FFmpeg.Path, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Timeout, logger)

	a.cfg = cfg
	a.logger = logger
	a.services = services.NewServices(storageManager, videos, executor, cfg, logger)

	logger.Debug("Configuration loaded",
		zap.String("video_dir", cfg.Paths.VideoDir),
		zap.String("annotation_dir", cfg.Paths.AnnotationDir),
		zap.Int("videos", videos.Len()),
		zap.String("ffmpeg", executor.GetFFmpegPath()),
		zap.String("ffprobe", executor.GetFFprobePath()),
	)
	return nil
}

// resolveVideo maps a command-line video argument to a file under the root
func (a *app) resolveVideo(arg string) (string, error) {
	video, err := a.services.Catalog.Resolve(arg)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(video); err != nil || info.IsDir() {
		return "", fmt.Errorf("video %s not found under %s", arg, a.cfg.Paths.VideoDir)
	}
	return video, nil
}

// scope narrows the catalog to a subfolder when one is given
func (a *app) scope(subfolder string) error {
	if subfolder == "" {
		return nil
	}
	return a.services.Catalog.UseSubfolder(subfolder)
}
