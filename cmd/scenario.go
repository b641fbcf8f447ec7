package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pipeline-sim/pipeline-sim/sim/workload"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Validate and print the effective scenario as YAML",
	Long:  "Prints the scenario selected by --scenario (or the built-in reference scenario) after flag overrides and validation. Output is written to stdout for piping into a file.",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := writeScenario(cmd.OutOrStdout(), spec); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func writeScenario(w io.Writer, spec *workload.ScenarioSpec) error {
	data, err := spec.Marshal()
	if err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing scenario: %w", err)
	}
	return nil
}
