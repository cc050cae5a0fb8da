package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weedonandscott/evercas"
)

var rootCmd = &cobra.Command{
	Use:   "evercas",
	Short: "Content-addressable file store CLI",
	Long:  "Store, retrieve, and repair files addressed by the hash of their contents.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/evercas/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "store root directory")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("EVERCAS")
	viper.AutomaticEnv()

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "evercas")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "evercas")
	}
	return ".evercas"
}

func storeRoot() (string, error) {
	root := viper.GetString("root")
	if root == "" {
		return "", fmt.Errorf("store root not set (use --root, EVERCAS_ROOT, or the config file)")
	}
	return root, nil
}

func openStore(opts ...evercas.Option) (*evercas.Store, error) {
	root, err := storeRoot()
	if err != nil {
		return nil, err
	}
	return evercas.Open(root, opts...)
}
