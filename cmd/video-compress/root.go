package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"video-compressor/internal/compressor"
	applog "video-compressor/internal/log"
	"video-compressor/internal/presets"
)

const (
	configEnv        = "VIDEO_COMPRESS_CONFIG"
	defaultConfigDir = "config"
)

// deps holds what commands reach outside the process for.
type deps struct {
	// newWork returns the function encoding one file.
	newWork func(ffmpeg string, logger zerolog.Logger) compressor.WorkFunc
}

func defaultDeps() deps {
	return deps{
		newWork: func(ffmpeg string, logger zerolog.Logger) compressor.WorkFunc {
			c := compressor.New(ffmpeg, logger)
			return func(ctx context.Context, t compressor.Task) error {
				return c.Compress(ctx, t.Input, t.Output, t.FFArgs)
			}
		},
	}
}

// commandContext carries root flag values into subcommands.
type commandContext struct {
	deps        deps
	config      string
	presetsFile string
	logLevel    string
	logger      zerolog.Logger
}

// presetPath resolves the preset file. An explicit --presets file wins;
// otherwise default.yaml inside the config directory, or default.toml when
// only that exists.
func (c *commandContext) presetPath() string {
	if c.presetsFile != "" {
		return c.presetsFile
	}
	yamlPath := filepath.Join(c.config, "default.yaml")
	tomlPath := filepath.Join(c.config, "default.toml")
	if _, err := os.Stat(yamlPath); err != nil {
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath
		}
	}
	return yamlPath
}

func newRootCommand(d deps) *cobra.Command {
	ctx := &commandContext{deps: d, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "video-compress",
		Short:         "Compress videos with ffmpeg presets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applog.Configure(applog.Config{
				Level:   ctx.logLevel,
				Output:  cmd.ErrOrStderr(),
				Service: "video-compress",
			})
			ctx.logger = applog.WithComponent("cli")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	configDefault := os.Getenv(configEnv)
	if configDefault == "" {
		configDefault = defaultConfigDir
	}
	levelDefault := os.Getenv("LOG_LEVEL")
	if levelDefault == "" {
		levelDefault = "warn"
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.config, "config", "c", configDefault, "Directory holding default.yaml (env "+configEnv+")")
	rootCmd.PersistentFlags().StringVar(&ctx.presetsFile, "presets", os.Getenv(presets.FileEnv), "Preset file, overriding --config (env "+presets.FileEnv+")")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", levelDefault, "Log level written to stderr")

	rootCmd.AddCommand(newCompressCommand(ctx))
	rootCmd.AddCommand(newPresetsCommand(ctx))
	return rootCmd
}
