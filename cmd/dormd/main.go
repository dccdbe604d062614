package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dorm-reservation-backend/config"
)

var rootCmd = &cobra.Command{
	Use:   "dormd",
	Short: "Dormitory reservation services",
	Long: `dormd runs the three services of the dormitory reservation system:
- rooms: the room registry, owner of room status.
- students: the student registry.
- reservations: the orchestrator that books rooms for students and keeps
  room status in step through the room registry.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("DORM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// CONFIG_PATH is kept for existing deployments.
	_ = viper.BindEnv("config", "DORM_CONFIG", "CONFIG_PATH")
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", "./config/config.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().Int("port", 0, "HTTP port (overrides server.port)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
}

func registerCommands() {
	rootCmd.AddCommand(serviceCmd("reservations", "Serve the reservation orchestrator", runReservations))
	rootCmd.AddCommand(serviceCmd("rooms", "Serve the room registry", runRooms))
	rootCmd.AddCommand(serviceCmd("students", "Serve the student registry", runStudents))
	rootCmd.AddCommand(configCmd())
}

// loadConfig reads the file named by --config, DORM_CONFIG or CONFIG_PATH and
// applies the --port / DORM_PORT override.
func loadConfig() (*config.Config, string, error) {
	path := viper.GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	if port := viper.GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	return cfg, path, nil
}
