package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"video-compressor/internal/compressor"
	"video-compressor/internal/domain"
	"video-compressor/internal/presets"
)

type compressOptions struct {
	jobs       int
	output     string
	preset     string
	videoCodec string
	ffpreset   string
	crf        int
	ffmpeg     string
}

func newCompressCommand(ctx *commandContext) *cobra.Command {
	opts := compressOptions{}

	cmd := &cobra.Command{
		Use:   "compress [flags] <file>...",
		Short: "Compress one or more video files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, ctx, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "Files to encode in parallel")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file, or directory when it exists or ends with a separator")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", domain.DefaultPresetID, "Preset name from the config file")
	cmd.Flags().StringVar(&opts.videoCodec, "video-codec", "", "Override the preset's video codec")
	cmd.Flags().StringVar(&opts.ffpreset, "ffpreset", "", "Override the preset's ffmpeg -preset value")
	cmd.Flags().IntVar(&opts.crf, "crf", 0, "Override the preset's CRF")
	cmd.Flags().StringVar(&opts.ffmpeg, "ffmpeg", compressor.DefaultFFmpeg, "ffmpeg binary")
	return cmd
}

func runCompress(cmd *cobra.Command, ctx *commandContext, opts compressOptions, files []string) error {
	if opts.jobs < 1 {
		return fmt.Errorf("--jobs must be at least 1, got %d", opts.jobs)
	}
	if len(files) > 1 && opts.output != "" && !isDirTarget(opts.output) {
		return errors.New("--output must be a directory when compressing more than one file")
	}

	path := ctx.presetPath()
	all, err := presets.LoadAll(path)
	if err != nil {
		return err
	}
	preset, ok := all[opts.preset]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %s)", opts.preset, strings.Join(presets.ListNames(all), ", "))
	}
	applyOverrides(cmd, &preset, opts)
	ffArgs := presets.BuildFFArgs(preset)

	tasks, err := planTasks(files, opts.output, ffArgs)
	if err != nil {
		return err
	}

	queue := compressor.NewQueue(opts.jobs, ctx.deps.newWork(opts.ffmpeg, ctx.logger))
	for _, task := range tasks {
		queue.Add(task)
	}

	ctx.logger.Info().
		Str("preset", opts.preset).
		Strs("ffmpeg_args", ffArgs).
		Int("jobs", opts.jobs).
		Int("files", queue.Len()).
		Msg("compress batch")

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	failed := 0
	for _, r := range queue.Run(cmd.Context()) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(errOut, "✗ %s: %v\n", r.Task.Input, r.Err)
			continue
		}
		fmt.Fprintf(out, "✓ %s\n", r.Task.Input)
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	fmt.Fprintln(out, "All done!")
	return nil
}

// planTasks derives one task per input and rejects batches where two inputs
// would be written to the same file.
func planTasks(files []string, output string, ffArgs []string) ([]compressor.Task, error) {
	tasks := make([]compressor.Task, 0, len(files))
	owners := make(map[string]string, len(files))
	for _, f := range files {
		dest := compressor.DeriveOutput(f, output)
		key := filepath.Clean(dest)
		if prev, ok := owners[key]; ok {
			return nil, fmt.Errorf("%s and %s would both write %s", prev, f, key)
		}
		owners[key] = f
		tasks = append(tasks, compressor.Task{Input: f, Output: dest, FFArgs: ffArgs})
	}
	return tasks, nil
}

// applyOverrides replaces preset fields whose flags were set explicitly.
func applyOverrides(cmd *cobra.Command, p *presets.Preset, opts compressOptions) {
	if cmd.Flags().Changed("video-codec") {
		p.VideoCodec = opts.videoCodec
	}
	if cmd.Flags().Changed("ffpreset") {
		p.Preset = opts.ffpreset
	}
	if cmd.Flags().Changed("crf") {
		p.CRF = opts.crf
	}
}

func isDirTarget(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
