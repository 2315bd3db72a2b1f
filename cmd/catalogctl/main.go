package main

import (
	"errors"
	"io/fs"
	"os"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile string
	log     *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Storefront catalog operations",
		Long: `catalogctl manages the storefront catalog database and previews variant resolution:
- migrate applies or reports the embedded schema migrations
- seed loads the bundled industrial pneumatics catalog
- resolve runs the variant resolver over a JSON fixture without a database`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// the file is optional, plain environment variables work without it
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			log = logger.NewWithDefaults()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before reading configuration")

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newResolveCmd())
	return root
}

// openDatabase connects with the environment's configuration
func openDatabase() (database.Service, error) {
	cfg := config.Load()
	return database.New(cfg.Database)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
