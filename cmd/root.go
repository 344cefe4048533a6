/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/starcat/internal/ops"
	"github.com/fulmenhq/starcat/pkg/buildinfo"
	"github.com/fulmenhq/starcat/pkg/config"
	"github.com/fulmenhq/starcat/pkg/exitcode"
	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/spf13/cobra"
)

// groupAnnotation carries a command's ops group so help can list it.
const groupAnnotation = "starcat.group"

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "starcat",
		Short: "Curate the astronomical object catalog and its textures",
		Long: `Starcat maintains a JSON catalog of astronomical objects (planets, moons,
nebulae, galaxies, star clusters, stars) together with the flat directory of
texture images the catalog references.

Examples:
   starcat validate                 # Check every entry and its texture
   starcat add --name Europa --size 3122 --color "#EFEFEF" --texture europa.jpg --type moon
   starcat fetch https://example.org/io.png io.jpg
   starcat seed                     # Add the built-in objects that are missing
   starcat prune --dry-run          # Show entries whose texture is gone`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Add global flags
	cmd.PersistentFlags().String("catalog", defaults.Catalog.Path, "Path to the catalog JSON document")
	cmd.PersistentFlags().String("textures", defaults.Textures.Dir, "Texture directory")
	cmd.PersistentFlags().String("config", "", "Config file (default: starcat.yaml in ., $HOME or $STARCAT_HOME/config)")
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("starcat {{.Version}}\n")

	// Grouped help by command group (Catalog → Assets → Support)
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != c.Root() {
			c.Println(c.Long)
			c.Println()
			c.Print(c.UsageString())
			return
		}
		reg := ops.GetRegistry()
		c.Println(c.Long)
		for _, group := range ops.GroupOrder {
			c.Println()
			c.Println(group.Title() + ":")
			for _, r := range reg.GetCommandsByGroup(group) {
				c.Printf("  %-12s %s\n", r.Name, r.Description)
			}
		}
		c.Println()
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newSeedCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newPruneCommand())
	cmd.AddCommand(newVersionCommand())
}

// registerOps records the root's subcommands in the ops registry used by help.
func registerOps(root *cobra.Command) {
	for _, c := range root.Commands() {
		group, ok := c.Annotations[groupAnnotation]
		if !ok {
			continue
		}
		if err := ops.RegisterCommand(c.Name(), ops.CommandGroup(group), c, c.Short); err != nil {
			panic(fmt.Sprintf("Failed to register %s command: %v", c.Name(), err))
		}
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCodeFor(err)
		logger.Error("Command execution failed", logger.Err(err), logger.String("exit", exitcode.String(code)))
		os.Exit(code)
	}
}

func init() {
	// Register all subcommands with the production rootCmd
	registerSubcommands(rootCmd)
	registerOps(rootCmd)
}

// initializeLogger sets up the logger from the root's persistent flags, so a
// subcommand's own --json never switches log format.
func initializeLogger(cmd *cobra.Command) {
	flags := cmd.Root().PersistentFlags()
	logLevelStr, _ := flags.GetString("log-level")
	jsonLogs, _ := flags.GetBool("json")
	noColor, _ := flags.GetBool("no-color")

	logLevel, ok := logger.ParseLevel(logLevelStr)

	logCfg := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "starcat",
	}

	if err := logger.Initialize(logCfg); err != nil {
		// Fallback to stderr
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
	if !ok {
		logger.Warn("Unknown log level, using info", logger.String("level", logLevelStr))
	}
}
