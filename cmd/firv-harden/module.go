package main

import (
	"fmt"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/spf13/cobra"

	"github.com/flattte/firv-rust-llvm-project/internal/firvharden"
	"github.com/flattte/firv-rust-llvm-project/internal/passconfig"
)

func loadModule(path string) (*ir.Module, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

func loadConfig(cmd *cobra.Command) (passconfig.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return passconfig.Config{}, err
	}
	if path == "" {
		return passconfig.Default(), nil
	}
	return passconfig.Load(path)
}

func loadDiagnostics(cmd *cobra.Command) (firvharden.Diagnostics, error) {
	colorize, err := cmd.Root().PersistentFlags().GetBool("color")
	if err != nil {
		return nil, err
	}
	return firvharden.NewStderrDiagnostics(colorize), nil
}
