package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flattte/firv-rust-llvm-project/internal/firvharden"
)

var checkCmd = &cobra.Command{
	Use:   "check <input.ll>",
	Short: "Report which functions would be hardened, without mutating anything",
	Args:  cobra.ExactArgs(1),
	RunE:  checkExecution,
}

func checkExecution(cmd *cobra.Command, args []string) error {
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

	hardened := 0
	for _, fn := range m.Funcs {
		if fn.Blocks == nil {
			continue
		}
		name := fn.GlobalName
		if firvharden.WouldHarden(fn, cfg, diag) {
			hardened++
			fmt.Fprintf(os.Stdout, "%s: would harden\n", name)
		} else {
			fmt.Fprintf(os.Stdout, "%s: unchanged\n", name)
		}
	}
	fmt.Fprintf(os.Stdout, "%d of %d functions would be hardened\n", hardened, len(m.Funcs))
	return nil
}
