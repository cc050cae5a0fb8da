package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Print the checksum a file would be stored under",
	Long:  "Compute the store digest of a file without storing it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	checksum, err := store.Checksum(f)
	if err != nil {
		return err
	}
	fmt.Println(checksum)
	return nil
}
