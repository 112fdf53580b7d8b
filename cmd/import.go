package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/linguabot/internal/database"
	"github.com/example/linguabot/internal/excel"
)

var importCmd = &cobra.Command{
	Use:   "import <user-id> <file>",
	Short: "Import words from an .xlsx or .csv file into a user's deck",
	Args:  cobra.ExactArgs(2),
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

		ctx := cmd.Context()
		profile, err := database.NewProfileRepository().Ensure(ctx, userID, "", "", time.Now())
		if err != nil {
			return err
		}

		importCfg := excel.DefaultImportConfig(userID)
		importCfg.Language = profile.Language
		if sheet, _ := cmd.Flags().GetString("sheet"); sheet != "" {
			importCfg.SheetName = sheet
		}
		if row, _ := cmd.Flags().GetInt("start-row"); row > 0 {
			importCfg.StartRow = row
		}

		result, err := excel.NewImporter(database.NewVocabularyRepository()).ImportFile(ctx, args[1], importCfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processed: %d\nCreated: %d\nUpdated: %d\nSkipped: %d\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("sheet", "", "sheet to import (first sheet by default)")
	importCmd.Flags().Int("start-row", 0, "first data row, 1-based (2 skips a header)")
}
