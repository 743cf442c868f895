package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/quizmate/internal/app"
	"github.com/abhisek/quizmate/internal/config"
	"github.com/abhisek/quizmate/internal/gateway"
	"github.com/abhisek/quizmate/internal/store"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the quiz client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addClientFlags(playCmd)
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("server", "", "Server URL (overrides client.server)")
	cmd.Flags().StringP("user", "u", "", "Username (overrides client.username)")
	cmd.Flags().StringP("course", "c", "", "Course name (overrides client.course)")
	cmd.Flags().String("log-file", "", "Client log file (overrides client.log_file)")
}

// clientConfig loads the config and applies the client flags.
func clientConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, err
	}
	stringFlag(cmd, "server", &cfg.Client.Server)
	stringFlag(cmd, "user", &cfg.Client.Username)
	stringFlag(cmd, "course", &cfg.Client.Course)
	stringFlag(cmd, "log-file", &cfg.Client.LogFile)
	if err := cfg.ValidateClient(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// backend is the gateway used by the client: reads are retried, the menu
// operations go straight to the server.
type backend struct {
	gateway.Gateway
	gateway.Catalog
}

// connect checks the server version and logs in, prompting for missing
// credentials. The username entered at the prompt is stored in cfg.
func connect(ctx context.Context, cfg *config.ClientConfig) (*gateway.Client, *gateway.LoginResult, error) {
	client, err := gateway.NewClient(gateway.ClientConfig{BaseURL: cfg.Server, Course: cfg.Course})
	if err != nil {
		return nil, nil, err
	}
	if err := client.CheckVersion(ctx); err != nil {
		return nil, nil, fmt.Errorf("contact %s: %w", cfg.Server, err)
	}

	if cfg.Username == "" {
		if cfg.Username, err = promptLine(os.Stdin, os.Stderr, "Username: "); err != nil {
			return nil, nil, err
		}
	}
	password := cfg.Password
	if password == "" {
		if password, err = promptPassword("Password: "); err != nil {
			return nil, nil, err
		}
	}

	res, err := client.Login(ctx, cfg.Username, password)
	if err != nil {
		return nil, nil, err
	}
	return client, res, nil
}

func promptLine(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password configured and stdin is not a terminal; set QUIZMATE_PASSWORD")
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// openClientLog opens the client log file. The terminal belongs to the
// UI, so nothing is logged to stderr while it runs.
func openClientLog(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := store.EnsureDir(path); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

// runPlay logs in and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := clientConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := openClientLog(cfg.Client.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		logger, closeLog = slog.New(slog.DiscardHandler), func() {}
	}
	defer closeLog()

	client, login, err := connect(ctx, &cfg.Client)
	if err != nil {
		return err
	}
	logger.Info("logged in", "server", cfg.Client.Server, "uid", login.UID, "course", login.Course)
	defer func() {
		if err := client.Logout(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("logout failed", "err", err)
		}
	}()

	course := login.Course
	if course == "" {
		course = client.Course()
	}
	b := backend{
		Gateway: gateway.WithRetry(client, gateway.DefaultRetryConfig()),
		Catalog: client,
	}
	return app.Run(ctx, b, app.Options{
		User:   cfg.Client.Username,
		Course: course,
		Logger: logger,
	})
}
