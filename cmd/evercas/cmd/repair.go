package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List misplaced files",
	Long:  "List files whose location does not match the address their content computes under the current configuration.",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Relocate misplaced files",
	Args:  cobra.NoArgs,
	RunE:  runRepair,
}

func init() {
	checkCmd.Flags().Bool("no-ext", false, "ignore extensions when computing expected addresses")
	repairCmd.Flags().Bool("no-ext", false, "ignore extensions when computing expected addresses")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(repairCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	noExt, _ := cmd.Flags().GetBool("no-ext")

	count := 0
	for path, entry := range store.Corrupted(!noExt) {
		fmt.Printf("%s\t-> %s\n", path, entry.Path)
		count++
	}

	if count == 0 {
		fmt.Println("(no misplaced files)")
	}
	return nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	noExt, _ := cmd.Flags().GetBool("no-ext")

	stats, err := store.Repair(!noExt)
	if err != nil {
		return err
	}

	fmt.Printf("relocated:\t%d\n", stats.Relocated)
	fmt.Printf("discarded:\t%d\n", stats.Discarded)
	return nil
}
