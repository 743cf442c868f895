package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/progression"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a progression without opening the client",
	Example: "  quizmate start --mode sequential --unit 第一章\n" +
		"  quizmate start --mode tag --tag wrong\n" +
		"  quizmate start --mode random --count 20",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := clientConfig(cmd)
		if err != nil {
			return err
		}

		req := gateway.StartRequest{}
		mode, _ := cmd.Flags().GetString("mode")
		req.Mode = gateway.StartMode(mode)
		switch req.Mode {
		case gateway.ModeSequential, gateway.ModeTag, gateway.ModeRandom:
		default:
			return fmt.Errorf("unknown mode %q (sequential, tag, random)", mode)
		}
		req.Unit, _ = cmd.Flags().GetString("unit")
		req.Tag, _ = cmd.Flags().GetString("tag")
		req.Count, _ = cmd.Flags().GetInt("count")
		if cmd.Flags().Changed("reveal") {
			reveal, _ := cmd.Flags().GetBool("reveal")
			req.Reveal = &reveal
		}

		client, _, err := connect(ctx, &cfg.Client)
		if err != nil {
			return err
		}
		defer client.Logout(context.WithoutCancel(ctx))

		res, err := client.StartProgression(ctx, req)
		if err != nil {
			return err
		}

		fmt.Printf("Started %s (key %q): %d questions", progression.Describe(res.Key), res.Key, len(res.List))
		if res.Pos > 0 {
			fmt.Printf(", resuming at %d", res.Pos+1)
		}
		if res.Reveal {
			fmt.Print(", answers revealed")
		}
		fmt.Println()
		return nil
	},
}

func init() {
	addClientFlags(startCmd)
	startCmd.Flags().String("mode", string(gateway.ModeSequential), "Progression mode: sequential, tag or random")
	startCmd.Flags().String("unit", "", "Unit for sequential mode (empty for every question)")
	startCmd.Flags().String("tag", "", "List for tag mode: wrong or star")
	startCmd.Flags().Int("count", 0, "Number of questions for random mode (server default 50)")
	startCmd.Flags().Bool("reveal", false, "Show answers instead of asking")
}
