package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/readcheck/internal/ui/theme"
)

var attemptsCmd = &cobra.Command{
	Use:   "attempts <passage-id>",
	Short: "List a student's attempts on a passage, latest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		showAnswers, _ := cmd.Flags().GetBool("answers")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		repo := e.store.AttemptRepo()
		attempts, err := repo.ListAttempts(ctx, studentID, args[0])
		if err != nil {
			return fmt.Errorf("list attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No attempts found.")
			return nil
		}

		lipgloss.Println(theme.Header.Render(fmt.Sprintf("%-4s  %-19s  %s", "#", "Submitted", "Score")))
		lipgloss.Println(theme.Rule(48))
		for _, a := range attempts {
			lipgloss.Printf("%-4d  %-19s  %s\n",
				a.AttemptNumber,
				a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				theme.Score(a.Score, a.TotalQuestions, a.PercentageScore),
			)
			if !showAnswers {
				continue
			}
			answers, err := repo.AttemptAnswers(ctx, a.ID)
			if err != nil {
				return fmt.Errorf("attempt %d answers: %w", a.AttemptNumber, err)
			}
			for _, ans := range answers {
				lipgloss.Printf("      %s  %s\n", theme.Verdict(ans.IsCorrect), truncate(ans.Answer, 60))
			}
		}
		return nil
	},
}

func init() {
	attemptsCmd.Flags().String("student", "", "Student ID")
	attemptsCmd.Flags().Bool("answers", false, "Show the stored answers of each attempt")
	_ = attemptsCmd.MarkFlagRequired("student")
}
