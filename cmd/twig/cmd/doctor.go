package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/twig/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, theme, git and the cache directory",
	Long: `Loads the config and theme, validates exclude patterns, looks for git and
verifies that the lookup store and log file can be written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := doctor.Run(cfgFile)

		if jsonOut {
			if err := writeJSON(os.Stdout, report); err != nil {
				return err
			}
		} else {
			for _, c := range report.Checks {
				fmt.Printf("%-5s %-8s %s\n", c.Status, c.Name, c.Detail)
			}
		}

		if report.Failed() {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
