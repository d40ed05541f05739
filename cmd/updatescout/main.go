package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/app"
	"github.com/omerch/updatescout/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	question     = flag.String("q", "", "Ask a single question and exit")
	userID       = flag.String("user", "cli", "User ID for quota accounting")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("UpdateScout version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("updatescout.toml"); err == nil {
			configFiles = append(configFiles, "updatescout.toml")
		}
	}

	// Startup order: config, logger, banner, app.
	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	transport := newConsoleTransport()

	application, err := app.New(config, transport, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	if *question != "" {
		if err := runOnce(application, *userID, *question); err != nil {
			logger.Error().Err(err).Msg("Question failed")
			os.Exit(1)
		}
		return
	}

	runInteractive(application, *userID, logger)
}
