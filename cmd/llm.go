package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmate/internal/llm"
	"github.com/abhisek/quizmate/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM requests",
}

// openEvents opens the store named by --db.
func openEvents(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-12s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 98))
		for _, e := range events {
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				clip(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("─", 60)
		fmt.Printf("ID:        %d\n", e.ID)
		fmt.Printf("Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Provider:  %s\n", e.Provider)
		fmt.Printf("Model:     %s\n", e.Model)
		fmt.Printf("Purpose:   %s\n", e.Purpose)
		fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Printf("Latency:   %dms\n", e.LatencyMs)
		fmt.Printf("Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", e.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body == "" {
				fmt.Println("(not captured)")
				continue
			}
			fmt.Println(part.body)
		}
		return nil
	},
}

type usage struct {
	calls, failed  int
	input, output  int
	totalLatencyMs int64
	cost           float64
	unpriced       bool
}

// addCost prices the usage of model, remembering when the model is unknown.
func (u *usage) addCost(model string, input, output int) {
	c := llm.LookupCost(model)
	if c == nil {
		u.unpriced = true
		return
	}
	u.cost += c.Cost(input, output)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEvents(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		byKey := make(map[string]*usage)
		for _, e := range events {
			key := e.Purpose + "\x00" + e.Model
			u, ok := byKey[key]
			if !ok {
				u = &usage{}
				byKey[key] = u
			}
			u.calls++
			if !e.Success {
				u.failed++
			}
			u.input += e.InputTokens
			u.output += e.OutputTokens
			u.totalLatencyMs += e.LatencyMs
			u.addCost(e.Model, e.InputTokens, e.OutputTokens)
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Printf("%-12s  %-28s  %6s  %6s  %10s  %10s  %8s  %9s\n",
			"Purpose", "Model", "Calls", "Failed", "Input", "Output", "Avg Ms", "Cost")
		fmt.Println(strings.Repeat("─", 103))
		var total usage
		for _, k := range keys {
			purpose, model, _ := strings.Cut(k, "\x00")
			u := byKey[k]
			fmt.Printf("%-12s  %-28s  %6d  %6d  %10d  %10d  %8d  %9s\n",
				purpose, clip(model, 28), u.calls, u.failed, u.input, u.output, u.totalLatencyMs/int64(u.calls), u.costString())
			total.calls += u.calls
			total.failed += u.failed
			total.input += u.input
			total.output += u.output
			total.cost += u.cost
			total.unpriced = total.unpriced || u.unpriced
		}
		fmt.Println(strings.Repeat("─", 103))
		fmt.Printf("%-12s  %-28s  %6d  %6d  %10d  %10d  %8s  %9s\n",
			"TOTAL", "", total.calls, total.failed, total.input, total.output, "", total.costString())
		if total.unpriced {
			fmt.Println("* some models have no known price; their tokens are not counted in the cost")
		}
		return nil
	},
}

func (u *usage) costString() string {
	s := fmt.Sprintf("$%.4f", u.cost)
	if u.unpriced {
		s += "*"
	}
	return s
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. explanation)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
