// Package cli implements foodgramctl, the management command line for the
// Foodgram backend.
package cli

import (
	"fmt"
	"io"
	"os"

	"foodgram/internal/config"
	"foodgram/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Exit codes.
const (
	ExitSuccess  = 0
	ExitInternal = 1
)

// Version is set at build time.
var Version = "0.1.0"

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	out     io.Writer

	loadConfig func() (*config.Config, error)
	connect    func(*config.Config) (*gorm.DB, error)

	cfg   *config.Config
	quiet bool
}

// New creates a CLI reading configuration the same way the server does.
func New() *CLI {
	c := &CLI{
		out:        os.Stdout,
		loadConfig: config.LoadConfig,
		connect:    database.Connect,
	}
	c.rootCmd = c.newRootCmd()
	return c
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "foodgramctl: %v\n", err)
		return ExitInternal
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "foodgramctl",
		Short:         "Foodgram management commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	cmd.SetOut(c.out)
	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress non-essential output")

	cmd.AddCommand(c.newMigrateCmd())
	cmd.AddCommand(c.newLoadIngredientsCmd())
	cmd.AddCommand(c.newSeedCmd())
	cmd.AddCommand(c.newVersionCmd())
	return cmd
}

func (c *CLI) db() (*gorm.DB, func(), error) {
	db, err := c.connect(c.cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

func (c *CLI) printf(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, format, args...)
}
