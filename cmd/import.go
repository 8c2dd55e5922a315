package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/readcheck/internal/passagefile"
	"github.com/abhisek/readcheck/internal/ui/theme"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import passages and their questions from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		passages, err := passagefile.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		teacher, _ := cmd.Flags().GetString("teacher")
		repo := e.store.PassageRepo()
		for _, p := range passages {
			if p.TeacherID == "" {
				p.TeacherID = teacher
			}
			if err := repo.Create(cmd.Context(), p); err != nil {
				return fmt.Errorf("create passage %q: %w", p.Title, err)
			}
			lipgloss.Printf("%s  %s  %s\n",
				theme.Correct.Render("+"),
				theme.Title.Render(p.Title),
				theme.Hint.Render(fmt.Sprintf("%s · grade %s · %d questions", p.ID, p.Grade, len(p.Questions))),
			)
		}
		fmt.Printf("\n%d passages imported\n", len(passages))
		return nil
	},
}

func init() {
	importCmd.Flags().String("teacher", "", "Teacher ID for passages that do not name one")
}
