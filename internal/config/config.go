package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultExportName is used when export_path points at a directory
const DefaultExportName = "annotations_export.json"

type Config struct {
	Paths      PathsConfig      `mapstructure:"paths"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Annotation AnnotationConfig `mapstructure:"annotation"`
	Server     ServerConfig     `mapstructure:"server"`
	FFmpeg     FFmpegConfig     `mapstructure:"ffmpeg"`
	Stats      StatsConfig      `mapstructure:"stats"`
	Log        LogConfig        `mapstructure:"log"`
}

type PathsConfig struct {
	VideoDir       string `mapstructure:"video_dir"`
	AnnotationDir  string `mapstructure:"annotation_dir"`
	ExportPath     string `mapstructure:"export_path"`
	VocabularyPath string `mapstructure:"vocabulary_path"`
}

type CatalogConfig struct {
	Extension string `mapstructure:"extension"`
}

type AnnotationConfig struct {
	Annotator    string   `mapstructure:"annotator"`
	DefaultNouns []string `mapstructure:"default_nouns"`
	DefaultVerbs []string `mapstructure:"default_verbs"`
}

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CorsOrigins []string `mapstructure:"cors_origins"`
}

type FFmpegConfig struct {
	Path      string        `mapstructure:"path"`
	ProbePath string        `mapstructure:"probe_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type StatsConfig struct {
	ClipSeconds   float64   `mapstructure:"clip_seconds"`
	ReviewFactors []float64 `mapstructure:"review_factors"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".annotator"))
		v.AddConfigPath("/etc/annotator/")
	}

	// ANNOTATOR_PATHS_VIDEO_DIR overrides paths.video_dir
	v.SetEnvPrefix("ANNOTATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Paths.VideoDir = expand(c.Paths.VideoDir)
	c.Paths.AnnotationDir = expand(c.Paths.AnnotationDir)
	c.Paths.ExportPath = expand(c.Paths.ExportPath)
	c.Paths.VocabularyPath = expand(c.Paths.VocabularyPath)

	if c.Paths.VideoDir == "" {
		return fmt.Errorf("paths.video_dir is required")
	}
	if c.Paths.AnnotationDir == "" {
		return fmt.Errorf("paths.annotation_dir is required")
	}

	// export_path may name a folder, as older configs did
	if c.Paths.ExportPath == "" {
		c.Paths.ExportPath = filepath.Join(c.Paths.AnnotationDir, DefaultExportName)
	} else if info, err := os.Stat(c.Paths.ExportPath); err == nil && info.IsDir() {
		c.Paths.ExportPath = filepath.Join(c.Paths.ExportPath, DefaultExportName)
	}

	if c.Catalog.Extension != "" && !strings.HasPrefix(c.Catalog.Extension, ".") {
		c.Catalog.Extension = "." + c.Catalog.Extension
	}

	return nil
}

// expand substitutes environment variables and makes the path absolute
func expand(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func setDefaults(v *viper.Viper) {
	// Path defaults
	v.SetDefault("paths.video_dir", "./videos")
	v.SetDefault("paths.annotation_dir", "./annotations")
	v.SetDefault("paths.export_path", "")
	v.SetDefault("paths.vocabulary_path", "./noun_verb_cache.json")

	// Catalog defaults
	v.SetDefault("catalog.extension", ".mp4")

	// Annotation defaults
	v.SetDefault("annotation.annotator", "")
	v.SetDefault("annotation.default_nouns", []string{})
	v.SetDefault("annotation.default_verbs", []string{})

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})

	// FFmpeg defaults
	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.probe_path", "ffprobe")
	v.SetDefault("ffmpeg.timeout", 30*time.Second)

	// Stats defaults, matching the 15 second clips the footage is cut into
	v.SetDefault("stats.clip_seconds", 15.0)
	v.SetDefault("stats.review_factors", []float64{3, 4, 5})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}
