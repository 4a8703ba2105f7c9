// Command firv-harden applies the FIRV hardening pass to functions in an
// LLVM IR module, the way the teacher's epos compiler drove its own
// codegen-to-executable pipeline, but narrowed to a single IR-to-IR pass.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "firv-harden",
	Short: "Fault-injection resilience verification hardening for LLVM IR functions",
	Long:  "firv-harden duplicates the computation of functions carrying the firv-harden attribute and traps on mismatch between the two results.",
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a TOML config file overlaying the pass defaults")
	rootCmd.PersistentFlags().Bool("color", true, "colorize diagnostic output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
