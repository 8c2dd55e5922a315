package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/readcheck/internal/llm"
	"github.com/abhisek/readcheck/internal/store"
	"github.com/abhisek/readcheck/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect judgment requests, token usage and cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent judgment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failed, _ := cmd.Flags().GetBool("failed")

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No judgment requests recorded.")
			return nil
		}

		lipgloss.Println(theme.Header.Render(fmt.Sprintf("%-5s  %-19s  %-10s  %-26s  %6s  %6s  %7s  %s",
			"ID", "Timestamp", "Provider", "Model", "In", "Out", "Ms", "OK")))
		lipgloss.Println(theme.Rule(100))

		for _, ev := range events {
			if failed && ev.Success {
				continue
			}
			lipgloss.Printf("%-5d  %-19s  %-10s  %-26s  %6d  %6d  %7d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(ev.Provider, 10),
				truncate(ev.Model, 26),
				ev.InputTokens,
				ev.OutputTokens,
				ev.LatencyMs,
				theme.Verdict(ev.Success),
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one judgment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %d\n", ev.ID)
		fmt.Printf("Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", ev.Provider)
		fmt.Printf("Model:     %s\n", ev.Model)
		fmt.Printf("Purpose:   %s\n", ev.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", ev.InputTokens, ev.OutputTokens)
		fmt.Printf("Latency:   %dms\n", ev.LatencyMs)
		lipgloss.Printf("Success:   %s\n", theme.Verdict(ev.Success))
		if ev.ErrorMessage != "" {
			lipgloss.Printf("Error:     %s\n", theme.Incorrect.Render(ev.ErrorMessage))
		}

		printSection("REQUEST", ev.RequestBody)
		printSection("RESPONSE", ev.ResponseBody)
		return nil
	},
}

func printSection(title, body string) {
	fmt.Println()
	lipgloss.Println(theme.Rule(60))
	lipgloss.Println(theme.Header.Render(title))
	lipgloss.Println(theme.Rule(60))
	if body == "" {
		lipgloss.Println(theme.Hint.Render("(not captured)"))
		return
	}
	fmt.Println(strings.TrimRight(body, "\n"))
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		events := e.store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No judgment usage recorded yet.")
			return nil
		}

		lipgloss.Println(theme.Title.Render("Usage by Purpose"))
		lipgloss.Println(theme.Rule(82))
		lipgloss.Println(theme.Header.Render(fmt.Sprintf("%-22s  %6s  %6s  %10s  %10s  %10s  %8s",
			"Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")))
		lipgloss.Println(theme.Rule(82))

		var totalCalls, totalFailed, totalIn, totalOut int
		for _, u := range byPurpose {
			fmt.Printf("%-22s  %6d  %6d  %10d  %10d  %10d  %8d\n",
				truncate(u.Key, 22), u.Calls, u.Failures, u.InputTokens, u.OutputTokens,
				u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
			totalCalls += u.Calls
			totalFailed += u.Failures
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
		}
		lipgloss.Println(theme.Rule(82))
		fmt.Printf("%-22s  %6d  %6d  %10d  %10d  %10d\n",
			"TOTAL", totalCalls, totalFailed, totalIn, totalOut, totalIn+totalOut)

		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		fmt.Println()
		lipgloss.Println(theme.Title.Render("Estimated Cost (USD)"))
		lipgloss.Println(theme.Rule(82))
		lipgloss.Println(theme.Header.Render(fmt.Sprintf("%-32s  %6s  %10s  %10s  %10s",
			"Model", "Calls", "Input", "Output", "Cost")))
		lipgloss.Println(theme.Rule(82))

		var totalCost float64
		var unknown []string
		for _, u := range byModel {
			cost := llm.LookupCost(u.Key)
			if cost == nil {
				unknown = append(unknown, u.Key)
				fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
					truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, "?")
				continue
			}
			c := cost.Cost(u.InputTokens, u.OutputTokens)
			totalCost += c
			fmt.Printf("%-32s  %6d  %10d  %10d  %10s\n",
				truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, formatCost(c))
		}

		lipgloss.Println(theme.Rule(82))
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))
		if len(unknown) > 0 {
			lipgloss.Println(theme.Hint.Render("\nPricing unavailable for: " + strings.Join(unknown, ", ")))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
