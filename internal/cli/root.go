// Package cli implements the greenloop command line interface.
// Commands operate directly on the local database through the application
// services; `greenloop serve` runs the ops HTTP server on top of them.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenloop-network/greenloop/internal/app/achievement"
	"github.com/greenloop-network/greenloop/internal/app/ledger"
	"github.com/greenloop-network/greenloop/internal/daemon"
	"github.com/greenloop-network/greenloop/internal/infra/sqlite"
)

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.greenloop/config.toml)")
}

var rootCmd = &cobra.Command{
	Use:   "greenloop",
	Short: "Waste management reward ledger",
	Long: `GreenLoop converts verified waste management activity (segregation
pickups, resolved reports, household classifications, completed training)
into carbon savings and PCC token rewards, recorded on a hash-chained
audit log.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// services holds the wired application stack for one CLI invocation.
type services struct {
	cfg    daemon.Config
	db     *sqlite.DB
	ledger *ledger.Service
	badges *achievement.Service
}

func (s *services) Close() { s.db.Close() }

// openServices loads config, opens the database, and wires the
// application services the way the daemon does.
func openServices() (*services, error) {
	path := configPath
	if path == "" {
		path = daemon.ConfigPath()
	}
	cfg, err := daemon.Load(path)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	l := ledger.New(ledger.Config{Epsilon: cfg.Ledger.Epsilon}, db)
	b := achievement.New(achievement.Config{
		StreakDays:     cfg.Achievements.StreakDays,
		StreakMinScore: cfg.Achievements.StreakMinScore,
	}, db)
	l.SetAchievements(b)

	return &services{cfg: cfg, db: db, ledger: l, badges: b}, nil
}
