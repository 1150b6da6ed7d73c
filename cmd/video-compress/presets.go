package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"video-compressor/internal/presets"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage compression presets",
	}
	cmd.AddCommand(newPresetsListCommand(ctx))
	cmd.AddCommand(newPresetsAddCommand(ctx))
	cmd.AddCommand(newPresetsRemoveCommand(ctx))
	cmd.AddCommand(newPresetsInitCommand(ctx))
	return cmd
}

func newPresetsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List presets in file order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := presets.LoadCatalog(ctx.presetPath())
			if err != nil {
				return err
			}
			if catalog.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No presets defined.")
				return nil
			}

			rows := make([][]string, 0, catalog.Len())
			for _, name := range catalog.Names() {
				p, _ := catalog.Preset(name)
				opt := p.Option()
				rows = append(rows, []string{
					name, opt.Label, p.VideoCodec, p.Preset, strconv.Itoa(p.CRF), opt.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Label", "Codec", "Preset", "CRF", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newPresetsAddCommand(ctx *commandContext) *cobra.Command {
	p := presets.Preset{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.CRF < 0 || p.CRF > 63 {
				return fmt.Errorf("--crf must be between 0 and 63, got %d", p.CRF)
			}
			path := ctx.presetPath()
			if err := presets.Save(path, args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %q to %s\n", args[0], path)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.VideoCodec, "video-codec", "libx264", "ffmpeg video codec")
	cmd.Flags().StringVar(&p.Preset, "preset", "medium", "ffmpeg -preset value")
	cmd.Flags().IntVar(&p.CRF, "crf", 23, "Constant rate factor")
	cmd.Flags().StringVar(&p.Label, "label", "", "Display label (derived from the name when empty)")
	cmd.Flags().StringVar(&p.Description, "description", "", "Description shown in the UI")
	return cmd
}

func newPresetsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := presets.Delete(ctx.presetPath(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed preset %q\n", args[0])
			return nil
		},
	}
}

func newPresetsInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the built-in presets to the config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ctx.presetPath()
			if err := presets.Seed(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote built-in presets to %s\n", path)
			return nil
		},
	}
}
