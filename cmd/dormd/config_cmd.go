package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dorm-reservation-backend/config"
)

func configCmd() *cobra.Command {
	cfg := &cobra.Command{Use: "config", Short: "Inspect configuration"}
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.SetTitle(path)
			tw.AppendHeader(table.Row{"Key", "Value"})
			for _, row := range configRows(cfg) {
				tw.AppendRow(row)
			}
			tw.Render()
			return nil
		},
	}
}

func configRows(cfg *config.Config) []table.Row {
	secret := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	return []table.Row{
		{"server.port", cfg.Server.Port},
		{"server.rate_limit_per_sec", cfg.Server.RateLimitPerSec},
		{"server.rate_limit_burst", cfg.Server.RateLimitBurst},
		{"server.cache_ttl_seconds", cfg.Server.CacheTTLSeconds},
		{"database.driver", cfg.Database.Driver},
		{"database.dsn", secret(cfg.Database.DSN)},
		{"database.max_open_conns", cfg.Database.MaxOpenConns},
		{"database.max_idle_conns", cfg.Database.MaxIdleConns},
		{"remote.rooms.base_url", cfg.Remote.Rooms.BaseURL},
		{"remote.rooms.timeout", cfg.Remote.Rooms.Timeout},
		{"remote.rooms.breaker.failure_threshold", cfg.Remote.Rooms.Breaker.FailureThreshold},
		{"remote.rooms.breaker.open_timeout", cfg.Remote.Rooms.Breaker.OpenTimeout},
		{"remote.students.base_url", cfg.Remote.Students.BaseURL},
		{"remote.students.timeout", cfg.Remote.Students.Timeout},
		{"remote.students.breaker.failure_threshold", cfg.Remote.Students.Breaker.FailureThreshold},
		{"reservations.timezone", cfg.Reservations.Timezone},
		{"sweeper.enabled", cfg.Sweeper.Enabled},
		{"sweeper.interval", cfg.Sweeper.Interval},
		{"sweeper.auto_activate", cfg.Sweeper.AutoActivate},
		{"sweeper.auto_complete", cfg.Sweeper.AutoComplete},
		{"push.enabled", cfg.Push.Enabled()},
		{"push.vapid_private_key", secret(cfg.Push.PrivateKey)},
		{"worker_pool.size", cfg.WorkerPool.Size},
		{"worker_pool.queue_size", cfg.WorkerPool.QueueSize},
	}
}
