// Package commands implements the coursesize command line.
package commands

import (
	"fmt"

	"github.com/lk2023060901/coursesize-backend/internal/conf"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/injector"
	"github.com/lk2023060901/coursesize-backend/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Set at build time.
	Version = "dev"
	Commit  = "none"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "coursesize",
	Short: "Course storage usage report",
	Long: `coursesize reports how much file storage each course of a Moodle site
uses, split into total and backup bytes, together with per-user usage and
the size of the site data directory.

Every config key can be overridden from the environment as
COURSESIZE_<SECTION>_<KEY>, e.g. COURSESIZE_DATABASE_HOST.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "keep the configured log level for one-shot commands")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "coursesize %s (commit: %s)\n", Version, Commit)
	},
}

// bootstrap loads the config, builds the logger and wires the application.
// One-shot commands log errors only unless --verbose is set, so that report
// output on stdout stays clean.
func bootstrap(oneShot bool) (*injector.App, func(), error) {
	config, err := conf.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if oneShot && !verbose {
		config.Log.Level = "error"
	}

	log, err := logger.InitGlobal(&config.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	return app, func() {
		cleanup()
		_ = log.Sync()
	}, nil
}
