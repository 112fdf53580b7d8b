package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/linguabot/internal/placement"
)

var placementCmd = &cobra.Command{
	Use:   "placement <correct> <total>",
	Short: "Print the level a placement score maps to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		correct, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid correct count %q", args[0])
		}
		total, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "invalid total %q", args[1])
		}
		if correct < 0 || total < 0 || correct > total {
			return errors.Errorf("correct must be between 0 and total, got %d/%d", correct, total)
		}
		fmt.Fprintln(cmd.OutOrStdout(), placement.Placement(correct, total))
		return nil
	},
}
