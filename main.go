// Package main provides the entry point for the navvoice CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/navvoice/voice"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	rootCmd = &cobra.Command{
		Use:   "navvoice",
		Short: "Speak navigation instructions from the command line",
		Long: paragraph(
			fmt.Sprintf("\nSpeak turn-by-turn %s through a local speech engine.", keyword("voice instructions")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return validateOptions()
		},
	}
)

func validateOptions() error {
	if configFile != "" && configFile != viper.ConfigFileUsed() {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}
	_, err := loadConfig()
	return err
}

// loadConfig reads the voice configuration from flags, environment and the
// config file, in that order of precedence.
func loadConfig() (voice.Config, error) {
	return voice.LoadConfigFromViper(viper.GetViper())
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	voice.SetDefaults(viper.GetViper())
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringP("engine", "e", voice.EngineMock, "speech engine (mock/piper)")
	flags.StringP("language", "l", "en", "instruction language as a BCP 47 tag")
	flags.BoolP("muted", "m", false, "start with voice instructions muted")
	flags.String("fallback", "", "engine to use when the primary engine keeps failing")

	// Config bindings
	_ = viper.BindPFlag("voice.engine", flags.Lookup("engine"))
	_ = viper.BindPFlag("voice.language", flags.Lookup("language"))
	_ = viper.BindPFlag("voice.muted", flags.Lookup("muted"))
	_ = viper.BindPFlag("voice.fallback", flags.Lookup("fallback"))

	rootCmd.AddCommand(speakCmd, simulateCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "navvoice")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "navvoice")}, dirs...)
	}

	if c := os.Getenv("NAVVOICE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("navvoice")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("navvoice")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "navvoice.yml")
	if err := ensureConfigFile(configFile); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
