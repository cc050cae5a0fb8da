package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show file count and total size",
	Args:  cobra.NoArgs,
	RunE:  runStat,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	count := 0
	for path, err := range store.Files() {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(store.Root(), path)
		if err != nil {
			return err
		}
		fmt.Println(rel)
		count++
	}

	if count == 0 {
		fmt.Println("(empty store)")
	}
	return nil
}

func runStat(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	count, err := store.Count()
	if err != nil {
		return err
	}
	size, err := store.Size()
	if err != nil {
		return err
	}

	fmt.Printf("files:\t%d\n", count)
	fmt.Printf("size:\t%s\n", humanize.Bytes(uint64(size)))
	return nil
}
