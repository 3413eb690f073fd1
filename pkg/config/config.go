package config

// Package config provides a reusable loader for the compiler's option
// record and environment variables. It is versioned so that applications
// can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/synnergy-labs/sir-compiler/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// CompilerOptions is the compiler's option record: optimization level,
// overflow-check behavior, coverage instrumentation, inlining, verbosity,
// and whether to route codegen through an external LLVM toolchain.
// cmd/sirc reads Codegen.OptLevel, Codegen.OverflowCheck and
// Logging.Verbose as defaults for its flags; the backend and the Yul
// front-end do not read this record.
type CompilerOptions struct {
	Codegen struct {
		OptLevel     int  `mapstructure:"opt_level" json:"opt_level"`
		OverflowCheck bool `mapstructure:"overflow_check" json:"overflow_check"`
		Inline       bool `mapstructure:"inline" json:"inline"`
		UseLLVM      bool `mapstructure:"use_llvm" json:"use_llvm"`
	} `mapstructure:"codegen" json:"codegen"`

	Coverage struct {
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		OutDir  string `mapstructure:"out_dir" json:"out_dir"`
	} `mapstructure:"coverage" json:"coverage"`

	Logging struct {
		Level   string `mapstructure:"level" json:"level"`
		Verbose bool   `mapstructure:"verbose" json:"verbose"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig CompilerOptions

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned.
//
// The function uses the provided environment name to merge additional
// config files. If env is empty, only the default configuration is loaded.
func Load(env string) (*CompilerOptions, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/sirc/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the SIRC_ENV environment variable.
func LoadFromEnv() (*CompilerOptions, error) {
	return Load(utils.EnvOrDefault("SIRC_ENV", ""))
}
