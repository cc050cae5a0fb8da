package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weedonandscott/evercas"
)

var putCmd = &cobra.Command{
	Use:   "put <path>...",
	Short: "Store files by content hash",
	Long:  "Store one or more files, or whole directories, addressed by their content digest.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPut,
}

func init() {
	putCmd.Flags().String("strategy", "", "put strategy for this call (copy, move, link)")
	putCmd.Flags().String("ext", "", "extension to append to stored files")
	putCmd.Flags().BoolP("recursive", "r", false, "recurse into directories")
	putCmd.Flags().Bool("no-ext", false, "drop source extensions when storing directories")

	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	var opts []evercas.PutOption
	if name, _ := cmd.Flags().GetString("strategy"); name != "" {
		strategy, err := evercas.StrategyByName(name)
		if err != nil {
			return err
		}
		opts = append(opts, evercas.WithStrategy(strategy))
	}
	if ext, _ := cmd.Flags().GetString("ext"); ext != "" {
		opts = append(opts, evercas.WithExtension(ext))
	}
	recursive, _ := cmd.Flags().GetBool("recursive")
	noExt, _ := cmd.Flags().GetBool("no-ext")

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			for res := range store.PutDir(path, recursive, !noExt, opts...) {
				if res.Err != nil {
					return fmt.Errorf("%s: %w", res.Source, res.Err)
				}
				printEntry(res.Source, res.Entry)
			}
			continue
		}
		entry, err := store.Put(path, opts...)
		if err != nil {
			return err
		}
		printEntry(path, entry)
	}
	return nil
}

func printEntry(source string, entry evercas.Entry) {
	mark := ""
	if entry.IsDuplicate {
		mark = "\t(duplicate)"
	}
	fmt.Printf("%s\t%s%s\n", entry.Checksum, source, mark)
}
