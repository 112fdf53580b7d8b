package cmd

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/spaced_repetition"
)

var dueCmd = &cobra.Command{
	Use:   "due <user-id>",
	Short: "List the words a user should review now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid user id %q", args[0])
		}

		_, closeDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDB()

		items, err := spaced_repetition.NewScheduler(database.NewVocabularyRepository()).Due(cmd.Context(), userID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "Nothing to review.")
			return nil
		}
		for _, item := range items {
			fmt.Fprintf(out, "#%d\t%s\t%s\tinterval=%dd ease=%.2f reps=%d\n",
				item.ID, item.Term, item.Meaning, item.IntervalDays, item.Ease, item.Repetitions)
		}
		return nil
	},
}
