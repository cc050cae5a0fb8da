package cmd

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <checksum>...",
	Short: "Delete stored content",
	Long:  "Delete files by checksum and prune emptied address directories. Absent checksums are ignored.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	for _, checksum := range args {
		if err := store.Delete(checksum); err != nil {
			return err
		}
	}
	return nil
}
