package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/explain"
	"github.com/abhisek/quizmate/internal/llm"
	"github.com/abhisek/quizmate/internal/store"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Generate short answer explanations for a course with an LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := llm.WithPurpose(cmd.Context(), explain.Purpose)
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		stringFlag(cmd, "provider", &cfg.LLM.Provider)
		stringFlag(cmd, "model", &cfg.LLM.Model)

		name, _ := cmd.Flags().GetString("course")
		src, ok := cfg.Source(name)
		if !ok {
			return fmt.Errorf("course %q is not configured", name)
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = src.Explanations
		}
		if out == "" {
			return fmt.Errorf("course %s has no explanations file; pass --out", src.Name)
		}

		// Existing explanations come from the output file only.
		src.Explanations = ""
		course, err := bank.Open(src)
		if err != nil {
			return err
		}
		existing, err := explain.Load(out)
		if err != nil {
			return fmt.Errorf("read %s: %w", out, err)
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		provider, err := llm.NewProvider(ctx, cfg.ProviderConfig(), st.EventRepo(), nil)
		if err != nil {
			return err
		}

		ecfg := explain.DefaultConfig()
		ecfg.Force, _ = cmd.Flags().GetBool("force")
		ecfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
		ecfg.Delay, _ = cmd.Flags().GetDuration("delay")

		gen := explain.NewGenerator(provider, ecfg, nil)
		gen.OnResult = func(o explain.Outcome) {
			if o.Err != nil {
				fmt.Printf("✗ %s  %v\n", o.ID, o.Err)
				return
			}
			fmt.Printf("✓ %s  %s\n", o.ID, o.Explanation)
		}

		fmt.Printf("Explaining %s (%d questions) with %s\n", course.Name, course.Len(), provider.ModelID())
		res, runErr := gen.Run(ctx, course, existing)
		if res != nil && res.Generated > 0 {
			if err := explain.Save(out, course, res); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
		}
		if runErr != nil {
			return runErr
		}

		fmt.Printf("\n%d generated, %d kept, %d failed -> %s\n", res.Generated, res.Kept, len(res.Failed), out)
		if len(res.Failed) > 0 {
			fmt.Fprintf(os.Stderr, "warning: %d questions have no explanation; run again to retry them\n", len(res.Failed))
		}
		return nil
	},
}

func init() {
	def := explain.DefaultConfig()
	explainCmd.Flags().String("course", "", "Course name (default: first configured course)")
	explainCmd.Flags().String("out", "", "Explanation file to write (default: the course's explanations path)")
	explainCmd.Flags().Bool("force", false, "Regenerate explanations that already exist")
	explainCmd.Flags().Int("concurrency", def.Concurrency, "Requests in flight")
	explainCmd.Flags().Duration("delay", def.Delay, "Pause after each request")
	explainCmd.Flags().String("provider", "", "LLM provider (overrides llm.provider)")
	explainCmd.Flags().String("model", "", "Model ID or alias (overrides llm.model)")
}
