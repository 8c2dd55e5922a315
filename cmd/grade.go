package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/readcheck/internal/auth"
	"github.com/abhisek/readcheck/internal/content"
	"github.com/abhisek/readcheck/internal/grading"
	"github.com/abhisek/readcheck/internal/ui/theme"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <passage-id> <answers.json>",
	Short: "Grade a submission and record it as the student's next attempt",
	Long: `Grade a submission read from a JSON file mapping question IDs to answers:
an option index for closed questions, text for open ones.

  {"<question-id>": 1, "<question-id>": "Because the river floods."}`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		studentID, _ := cmd.Flags().GetString("student")
		asJSON, _ := cmd.Flags().GetBool("json")

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		var sub content.Submission
		if err := json.Unmarshal(data, &sub); err != nil {
			return fmt.Errorf("parse answers: %w", err)
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc := e.gradingService(cmd.Context(), nil)
		principal := auth.Principal{ID: studentID, Role: auth.RoleStudent}
		res, err := svc.GradeSubmission(cmd.Context(), principal, args[0], sub)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		printResult(res)
		return nil
	},
}

func printResult(res *grading.Result) {
	lipgloss.Println(theme.Title.Render(fmt.Sprintf("Attempt #%d", res.AttemptNumber)) + "  " +
		theme.Score(res.Score, res.TotalQuestions, res.PercentageScore))
	lipgloss.Println(theme.Rule(60))
	for i, r := range res.Results {
		line := fmt.Sprintf("%s  Q%d  %-6s", theme.Verdict(r.IsCorrect), i+1, r.Kind)
		if r.Feedback != "" {
			line += "  " + theme.Hint.Render(r.Feedback)
		}
		lipgloss.Println(line)
	}
}

func init() {
	gradeCmd.Flags().String("student", "", "Student ID submitting the answers")
	gradeCmd.Flags().Bool("json", false, "Print the result as JSON")
	_ = gradeCmd.MarkFlagRequired("student")
}
