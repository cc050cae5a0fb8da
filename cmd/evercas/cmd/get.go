package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <checksum>",
	Short: "Print the stored path for a checksum",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var catCmd = &cobra.Command{
	Use:   "cat <checksum>",
	Short: "Write stored content to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <checksum> <dest>",
	Short: "Copy stored content to an external path",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckout,
}

func init() {
	checkoutCmd.Flags().Bool("symlink", false, "symlink instead of copying")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(checkoutCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	entry, err := store.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Println(entry.Path)
	return nil
}

func runCat(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	f, err := store.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(os.Stdout, f)
	return err
}

func runCheckout(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if symlink, _ := cmd.Flags().GetBool("symlink"); symlink {
		return store.CheckoutSymlink(args[0], args[1])
	}
	return store.Checkout(args[0], args[1])
}
