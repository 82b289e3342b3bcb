package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hospitaldelmovil/cotizador/internal/model"
)

// Version is set at build time with -ldflags "-X ...cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cotizador",
	Short: "Cotizador - repair part price research and customer quotes",
	Long: `Cotizador looks up what a repair part costs online and at local
suppliers, charts the spread against past offers, and drafts two
customer quotes: the fastest delivery and the cheapest option.

Online prices come from an AI-assisted lookup (OpenAI, Anthropic or
Ollama) with sample data as fallback; local prices come from a
published supplier sheet.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cotizador v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.cotizador/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and COTIZADOR_* variables
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".cotizador"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configureViper(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper registers the built-in defaults and the environment
// bindings, so COTIZADOR_LLM_PROVIDER overrides llm.provider
func configureViper(v *viper.Viper) error {
	v.SetEnvPrefix("COTIZADOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var defaults map[string]interface{}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Keys hidden from the defaults (secrets and omitempty values) still
	// need an explicit environment binding
	for _, key := range []string{
		"llm.api_key", "llm.base_url",
		"http.http_proxy", "http.https_proxy", "http.no_proxy",
		"supplier.sheet_path", "supplier.xlsx_sheet",
		"history.path",
	} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// loadConfig merges defaults, config file, environment and bound flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
