package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flattte/firv-rust-llvm-project/internal/firvharden"
)

var runCmd = &cobra.Command{
	Use:   "run <input.ll> [flags]",
	Short: "Harden every firv-harden function in a module and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runExecution,
}

func init() {
	runCmd.Flags().StringP("output", "o", "", "write the transformed module here instead of stdout")
	runCmd.Flags().Int("jobs", 0, "max functions hardened concurrently (0 = no limit)")
}

func runExecution(cmd *cobra.Command, args []string) error {
	m, err := loadModule(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	diag, err := loadDiagnostics(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	g, _ := errgroup.WithContext(cmd.Context())
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	guard := firvharden.NewModuleGuard()

	for _, fn := range m.Funcs {
		fn := fn
		g.Go(func() error {
			_, err := firvharden.Run(fn, cfg, diag, guard)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("hardening module: %w", err)
	}

	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Fprintln(os.Stdout, m.String())
		return nil
	}
	return os.WriteFile(out, []byte(m.String()), 0o644)
}
