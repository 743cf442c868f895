package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmate/internal/bank"
	"github.com/abhisek/quizmate/internal/server"
	"github.com/abhisek/quizmate/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		stringFlag(cmd, "addr", &cfg.Serve.Addr)
		stringFlag(cmd, "data-dir", &cfg.Serve.DataDir)
		if err := cfg.ValidateServe(); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("log-format")
		logger, err := newServerLogger(format)
		if err != nil {
			return err
		}

		catalog, err := bank.OpenCatalog(cfg.Sources())
		if err != nil {
			return fmt.Errorf("load question banks: %w", err)
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

		logger.Info("starting", "version", version, "db", dbPath)
		srv := server.New(server.Config{
			Addr:       cfg.Serve.Addr,
			SessionTTL: cfg.Serve.SessionTTL.Duration,
			Version:    version,
			Logger:     logger,
		}, catalog, st)
		return srv.Run(ctx)
	},
}

func newServerLogger(format string) (*slog.Logger, error) {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, nil)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (json, text)", format)
	}
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides serve.addr)")
	serveCmd.Flags().String("data-dir", "", "Directory of question banks (overrides serve.data_dir)")
	serveCmd.Flags().String("log-format", "text", "Log format: text or json")
}
