package main

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgconfig "github.com/synnergy-labs/sir-compiler/pkg/config"
)

var (
	flagVerbose       bool
	flagOverflowCheck bool
	flagOptLevel      int
)

var rootCmd = &cobra.Command{
	Use:   "sirc",
	Short: "SIR compiler and mock-runtime driver",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load() // optional; absence is not an error
		applyFileConfig(cmd)
		if flagVerbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

// applyFileConfig layers a config file's values (via pkg/config, SIRC_ENV
// selected) under whatever the user passed explicitly on the command line:
// flags the user set take precedence, unset flags fall back to the file.
// A missing config file is not an error; sirc runs fine on flags alone.
func applyFileConfig(cmd *cobra.Command) {
	cfg, err := pkgconfig.LoadFromEnv()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.WithError(err).Warn("config file load failed, continuing on flags/env alone")
		}
		return
	}
	if !cmd.Flags().Changed("overflow-check") {
		flagOverflowCheck = cfg.Codegen.OverflowCheck
	}
	if !cmd.Flags().Changed("opt-level") {
		flagOptLevel = cfg.Codegen.OptLevel
	}
	if !cmd.Flags().Changed("verbose") {
		flagVerbose = cfg.Logging.Verbose
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagOverflowCheck, "overflow-check", true, "abort on checked-arithmetic overflow")
	rootCmd.PersistentFlags().IntVar(&flagOptLevel, "opt-level", 0, "backend optimization level")
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(debugCmd)
}
