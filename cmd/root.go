package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Pedro004-dot/alicit/internal/matching"
)

const (
	app = "alicit"

	defaultDataDir = "data"
)

type Config struct {
	// DataDir is the directory holding the JSON corpus files.
	DataDir string `mapstructure:"data-dir"`
	// States restricts the collection sweep; empty means all 27.
	States     []string            `mapstructure:"states"`
	Thresholds matching.Thresholds `mapstructure:"thresholds"`
	Vectorizer *VectorizerConfig   `mapstructure:"vectorizer"`
	Checklist  *ChecklistConfig    `mapstructure:"checklist"`
}

type VectorizerConfig struct {
	// Kind selects the embedding backend: remote, local, keyword or hybrid.
	Kind          string        `mapstructure:"kind"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
	LocalModel    string        `mapstructure:"local-model"`
	LocalCacheDir string        `mapstructure:"local-cache-dir"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ChecklistConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "alicit matches public procurement bids against company capability profiles",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("vectorizer.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is alicit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the corpus-processing commands.
	if runCmd.CalledAs() == "" && reevaluateCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config != nil && config.DataDir == "" {
		config.DataDir = defaultDataDir
	}

	return config, nil
}
