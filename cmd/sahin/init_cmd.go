package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hakim/sahin/internal/config"
	"github.com/hakim/sahin/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sahin with default configuration",
	Long: `Creates a default configuration file (sahin.yaml), the report directory and
the database used for scan history.

This is typically the first command you run when setting up sahin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := filepath.Join(initDir, config.ConfigName+".yaml")

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s. Use --force to overwrite", configPath)
		}

		// Create default config
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("Created %s with default configuration\n", configPath)

		// Load the config we just created to get paths
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Create report directory
		if err := storage.EnsureDir(afero.NewOsFs(), loaded.ReportDir); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		fmt.Printf("Created report directory: %s\n", loaded.ReportDir)

		// Initialize database
		store, err := storage.NewStore(loaded.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()
		fmt.Printf("Initialized database: %s\n", loaded.DBPath)

		// Print success message
		fmt.Println()
		fmt.Println("Sahin initialized successfully!")
		fmt.Println("Run 'sahin check' to verify your tools.")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "output directory")
	rootCmd.AddCommand(initCmd)
}
