package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Asterixfoods/asterix-charts/constants/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file
type Config struct {
	Version        string           `mapstructure:"version"`
	InputFile      string           `mapstructure:"input_file"`
	ProjectPrefix  string           `mapstructure:"project_prefix"`
	ChartsDir      string           `mapstructure:"charts_dir"`
	KeepOriginal   bool             `mapstructure:"keep_original"`
	NonInteractive bool             `mapstructure:"non_interactive"`
	Manifest       bool             `mapstructure:"manifest"`
	Generator      *GeneratorConfig `mapstructure:"generator"`
	History        *HistoryConfig   `mapstructure:"history"`
}

// GeneratorConfig describes how the external chart generator is launched
type GeneratorConfig struct {
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
	Env     []string      `mapstructure:"env"`
}

// HistoryConfig controls the local run journal
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:        "1.3.0",
	InputFile:      "summary_data.csv",
	ProjectPrefix:  "Project",
	ChartsDir:      "asterix_charts",
	KeepOriginal:   false,
	NonInteractive: false,
	Manifest:       true,
	Generator: &GeneratorConfig{
		Command: "chart_generator",
		Args:    nil,
		Timeout: 0,
		Env:     nil,
	},
	History: &HistoryConfig{
		Enabled: true,
		Path:    filepath.Join(".asterix-charts", "runs.db"),
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	// Set default values using Viper
	setDefaults()

	// Load a local .env if present, so generator credentials and
	// overrides can live next to the data
	if envFile := filepath.Join(cwd, ".env"); fileExists(envFile) {
		_ = godotenv.Load(envFile)
	}

	// Automatically read environment variables
	viper.AutomaticEnv()

	// Explicitly bind environment variables to config keys
	bindEnv()

	// Check if the user provided a config file
	if cfgFile != "" {
		// Use the config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Look for configuration files in the current directory
		viper.SetConfigName("asterix-config") // Name of config file (without extension)
		viper.AddConfigPath(cwd)              // Look in the current working directory

		// Support both JSON and YAML formats
		viper.SetConfigType("yaml") // Set default type
		if err := viper.ReadInConfig(); err != nil {
			// If YAML fails, try JSON
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				// If both fail, we'll continue with defaults
				fmt.Println(lipgloss.Gray.Render("No configuration file found, using defaults"))
			}
		}
	}

	// Read the explicitly specified config file (if any)
	if cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	}

	// Bind CLI flags to override config values
	bindFlags(rootCmd)

	// Unmarshal the configuration into the Config struct
	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("input_file", DefaultConfig.InputFile)
	viper.SetDefault("project_prefix", DefaultConfig.ProjectPrefix)
	viper.SetDefault("charts_dir", DefaultConfig.ChartsDir)
	viper.SetDefault("keep_original", DefaultConfig.KeepOriginal)
	viper.SetDefault("non_interactive", DefaultConfig.NonInteractive)
	viper.SetDefault("manifest", DefaultConfig.Manifest)
	viper.SetDefault("generator.command", DefaultConfig.Generator.Command)
	viper.SetDefault("generator.args", DefaultConfig.Generator.Args)
	viper.SetDefault("generator.timeout", DefaultConfig.Generator.Timeout)
	viper.SetDefault("generator.env", DefaultConfig.Generator.Env)
	viper.SetDefault("history.enabled", DefaultConfig.History.Enabled)
	viper.SetDefault("history.path", DefaultConfig.History.Path)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("input_file", "ASTERIX_INPUT_FILE")
	_ = viper.BindEnv("project_prefix", "ASTERIX_PROJECT_PREFIX")
	_ = viper.BindEnv("charts_dir", "ASTERIX_CHARTS_DIR")
	_ = viper.BindEnv("keep_original", "ASTERIX_KEEP_ORIGINAL")
	_ = viper.BindEnv("non_interactive", "ASTERIX_NON_INTERACTIVE")
	_ = viper.BindEnv("manifest", "ASTERIX_MANIFEST")
	_ = viper.BindEnv("generator.command", "ASTERIX_GENERATOR_COMMAND")
	_ = viper.BindEnv("generator.timeout", "ASTERIX_GENERATOR_TIMEOUT")
	_ = viper.BindEnv("history.enabled", "ASTERIX_HISTORY_ENABLED")
	_ = viper.BindEnv("history.path", "ASTERIX_HISTORY_PATH")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("input_file", rootCmd.PersistentFlags().Lookup("input_file"))
	_ = viper.BindPFlag("project_prefix", rootCmd.PersistentFlags().Lookup("project_prefix"))
	_ = viper.BindPFlag("charts_dir", rootCmd.PersistentFlags().Lookup("charts_dir"))
	_ = viper.BindPFlag("keep_original", rootCmd.PersistentFlags().Lookup("keep_original"))
	_ = viper.BindPFlag("non_interactive", rootCmd.PersistentFlags().Lookup("non_interactive"))
	_ = viper.BindPFlag("manifest", rootCmd.PersistentFlags().Lookup("manifest"))
	_ = viper.BindPFlag("generator.command", rootCmd.PersistentFlags().Lookup("generator_command"))
	_ = viper.BindPFlag("generator.args", rootCmd.PersistentFlags().Lookup("generator_args"))
	_ = viper.BindPFlag("generator.timeout", rootCmd.PersistentFlags().Lookup("generator_timeout"))
	_ = viper.BindPFlag("generator.env", rootCmd.PersistentFlags().Lookup("generator_env"))
	_ = viper.BindPFlag("history.enabled", rootCmd.PersistentFlags().Lookup("history"))
	_ = viper.BindPFlag("history.path", rootCmd.PersistentFlags().Lookup("history_path"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	// Input artifact configuration
	rootCmd.PersistentFlags().String("input_file", DefaultConfig.InputFile, "Name of the summary CSV expected in the working directory.")
	rootCmd.PersistentFlags().String("project_prefix", DefaultConfig.ProjectPrefix, "Prefix for generated project folder names.")
	rootCmd.PersistentFlags().String("charts_dir", DefaultConfig.ChartsDir, "Subfolder the chart generator writes its output to.")
	rootCmd.PersistentFlags().Bool("keep_original", DefaultConfig.KeepOriginal, "Keep the top-level CSV after a successful run instead of deleting it.")
	rootCmd.PersistentFlags().BoolP("non_interactive", "y", DefaultConfig.NonInteractive, "Skip all acknowledgment pauses (for scripted or CI use).")
	rootCmd.PersistentFlags().Bool("manifest", DefaultConfig.Manifest, "Write a run.yaml manifest into each project folder.")

	// Chart generator configuration
	rootCmd.PersistentFlags().String("generator_command", DefaultConfig.Generator.Command, "Command used to launch the chart generator.")
	rootCmd.PersistentFlags().StringSlice("generator_args", DefaultConfig.Generator.Args, "Extra arguments passed to the chart generator.")
	rootCmd.PersistentFlags().Duration("generator_timeout", DefaultConfig.Generator.Timeout, "Maximum time the chart generator may run (0 means no limit).")
	rootCmd.PersistentFlags().StringSlice("generator_env", DefaultConfig.Generator.Env, "Additional KEY=VALUE environment entries for the chart generator.")

	// Run history configuration
	rootCmd.PersistentFlags().Bool("history", DefaultConfig.History.Enabled, "Record runs in the local history journal.")
	rootCmd.PersistentFlags().String("history_path", DefaultConfig.History.Path, "Path of the sqlite run journal.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
