package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve [-- command args...]",
	Short: "Run the crew locally and serve its status feed",
	Long: `Run the crew command locally and serve its status feed over HTTP.

POST /api/run starts the command under a pseudo-terminal, GET /api/status
returns the captured snapshot, and GET /metrics exposes Prometheus metrics.
The command comes from server.command, or from the arguments after "--".

Examples:
  crewview serve -- python -m crew.main
  crewview serve --addr :8080`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	command := cfg.Server.Command
	if len(args) > 0 {
		command = args
	}
	if len(command) == 0 {
		return errors.New("no crew command: set server.command or pass it after --")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	source := feed.NewExecSource(command,
		feed.WithDir(cfg.Server.Dir),
		feed.WithEmailArtifact(cfg.Server.ResolveEmailPath()),
		feed.WithLogger(logger.WithComponent("exec")),
	)
	defer source.Stop(5 * time.Second)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(source, server.Options{
		Addr:   cfg.Server.Addr,
		Logger: logger,
		CORS:   cfg.Server.CORS,
	})
	cmd.Printf("Serving crew feed on %s\n", cfg.Server.Addr)
	return srv.ListenAndServe(ctx)
}
