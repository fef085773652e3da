package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rustyeddy/stocksim/api"
	"github.com/rustyeddy/stocksim/config"
	"github.com/rustyeddy/stocksim/journal"
	"github.com/rustyeddy/stocksim/paper"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve starts the simulator's HTTP API: backtest runs and a live
paper trading session.

Example:
  stocksim serve --config stocksim.yaml
  stocksim serve --addr :8000`,
	RunE: runServe,
}

var (
	serveConfigPath string
	serveAddr       string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to config file (YAML or JSON)")
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	srv := api.NewServer(cfg, log, paper.WithJournal(j))
	return srv.Serve()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load(), nil
	}
	return config.LoadFromFile(path)
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch strings.ToLower(jc.Type) {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		j, err := journal.NewCSV(jc.TradesFile, jc.EquityFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}
