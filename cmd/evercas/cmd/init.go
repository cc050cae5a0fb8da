package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weedonandscott/evercas"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a store",
	Long:  "Create the store root and persist its addressing configuration.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("algorithm", "", "digest algorithm (blake3, sha256, sha512)")
	initCmd.Flags().Int("depth", 0, "number of prefix directories per address")
	initCmd.Flags().Int("width", 0, "hex characters per prefix directory")
	initCmd.Flags().String("strategy", "", "default put strategy (copy, move, link)")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	var opts []evercas.Option
	if v, _ := cmd.Flags().GetString("algorithm"); v != "" {
		opts = append(opts, evercas.WithAlgorithm(v))
	}
	if v, _ := cmd.Flags().GetInt("depth"); v > 0 {
		opts = append(opts, evercas.WithDepth(v))
	}
	if v, _ := cmd.Flags().GetInt("width"); v > 0 {
		opts = append(opts, evercas.WithWidth(v))
	}
	if v, _ := cmd.Flags().GetString("strategy"); v != "" {
		opts = append(opts, evercas.WithDefaultStrategy(v))
	}

	store, err := openStore(opts...)
	if err != nil {
		return err
	}
	if err := store.Init(); err != nil {
		return err
	}

	fmt.Printf("initialized %s store at %s\n", store.Algorithm(), store.Root())
	return nil
}
