package commands

import (
	"flag"
	"os"

	"github.com/klabast/wb-services/canada-holidays/internal/app"
)

// configFlag registers the -config flag shared by every subcommand
func configFlag(fs *flag.FlagSet) *string {
	return fs.String("config", "", "Path to TOML config file (default: $HOLIDAYS_CONFIG or ./"+app.DefaultConfigFile+" if present)")
}

// resolveConfigPath picks the config file: flag, then env, then the default
// file in the working directory when it exists
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(app.EnvPrefix + "CONFIG"); env != "" {
		return env
	}
	if _, err := os.Stat(app.DefaultConfigFile); err == nil {
		return app.DefaultConfigFile
	}
	return ""
}
