// Command sonika serves a directory of tunes and a static web player.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oduortoni/sonika/internal/config"
)

// version is set during build via -ldflags "-X main.version=X.Y.Z".
var version = "dev"

// dotEnvFile is the optional environment file read at startup.
const dotEnvFile = ".env"

// fatal prints an error to standard error and exits with a failure code.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

var rootCommand = &cobra.Command{
	Use:          "sonika",
	Short:        "Serve a directory of tunes and a web player",
	Version:      version,
	Args:         cobra.NoArgs,
	RunE:         serveMain,
	SilenceUsage: true,
	// Errors are printed by main.
	SilenceErrors: true,
}

// rootConfiguration stores the flags shared by all commands.
var rootConfiguration struct {
	// configFile is the path of an optional TOML or YAML configuration file.
	configFile string
	// addr overrides the listen address.
	addr string
	// staticDir overrides the static directory.
	staticDir string
	// tunesDir overrides the tunes directory.
	tunesDir string
	// extension overrides the tune extension.
	extension string
	// staticListing overrides directory listings under /static/.
	staticListing bool
	// maxConnections overrides the connection limit.
	maxConnections int
	// debug enables debug logging.
	debug bool
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.SortFlags = false

	flags.StringVarP(&rootConfiguration.configFile, "config", "c", "", "Read configuration from a TOML or YAML file")
	flags.StringVarP(&rootConfiguration.addr, "addr", "a", config.DefaultAddr, "Listen address")
	flags.StringVar(&rootConfiguration.staticDir, "static-dir", config.DefaultStaticDir, "Static asset directory")
	flags.StringVar(&rootConfiguration.tunesDir, "tunes-dir", config.DefaultTunesDir, "Tunes directory")
	flags.StringVar(&rootConfiguration.extension, "extension", config.DefaultExtension, "Tune file extension (case-sensitive)")
	flags.BoolVar(&rootConfiguration.staticListing, "static-listing", true, "Generate directory listings under /static/")
	flags.IntVar(&rootConfiguration.maxConnections, "max-connections", 0, "Maximum simultaneous connections (0 for no limit)")
	flags.BoolVarP(&rootConfiguration.debug, "debug", "d", false, "Enable debug logging")

	rootCommand.AddCommand(serveCommand, listCommand)
}

// loadConfiguration resolves the configuration: defaults, the configuration
// file, the environment (after loading .env), then any flags that were set
// explicitly.
func loadConfiguration(flags *pflag.FlagSet) (*config.Config, error) {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(rootConfiguration.configFile)
	if err != nil {
		return nil, err
	}

	if flags.Changed("addr") {
		cfg.Addr = rootConfiguration.addr
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir = rootConfiguration.staticDir
	}
	if flags.Changed("tunes-dir") {
		cfg.TunesDir = rootConfiguration.tunesDir
	}
	if flags.Changed("extension") {
		cfg.Extension = rootConfiguration.extension
	}
	if flags.Changed("static-listing") {
		cfg.StaticListing = rootConfiguration.staticListing
	}
	if flags.Changed("max-connections") {
		cfg.MaxConnections = rootConfiguration.maxConnections
	}
	if flags.Changed("debug") {
		cfg.Debug = rootConfiguration.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}
