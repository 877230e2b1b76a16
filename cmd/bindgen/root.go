package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/wheel-bindings/binding"
)

// options holds flags shared by every subcommand.
type options struct {
	manifest string
	output   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "bindgen",
		Short: "Generate bindings from a binding manifest",
		Long: `Generate the C header or WIT package for a binding manifest.

Without --manifest the built-in wheels manifest is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.manifest, "manifest", "", "path to manifest YAML")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")

	cmd.AddCommand(
		newEmitCommand(opts, "c", "Write a C header", binding.EmitCHeader),
		newEmitCommand(opts, "wit", "Write a WIT package", binding.EmitWIT),
	)
	return cmd
}

type emitFunc func(io.Writer, *binding.Module) error

func newEmitCommand(opts *options, use, short string, emit emitFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mod, err := loadModule(opts.manifest)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := emit(&buf, mod); err != nil {
				return err
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
}

func loadModule(path string) (*binding.Module, error) {
	if path == "" {
		return binding.Wheels(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	mod, err := binding.LoadManifest(data)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return mod, nil
}
