package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/oduortoni/sonika/internal/catalog"
)

// listMain is the entry point for the list command.
func listMain(command *cobra.Command, _ []string) error {
	cfg, err := loadConfiguration(command.Flags())
	if err != nil {
		return err
	}

	c := catalog.New(catalog.Options{Dir: cfg.TunesDir, Extension: cfg.Extension})
	list, err := c.List()
	if err != nil {
		return err
	}

	return printList(command.OutOrStdout(), c, list, listConfiguration.json)
}

// printList writes list either as the JSON document served at /tunes or as a
// table of names and sizes.
func printList(w io.Writer, c *catalog.Catalog, list *catalog.SongList, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(list)
	}

	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range list.Songs {
		size := "-"
		if info, err := os.Stat(filepath.Join(c.Dir(), name)); err == nil && !info.IsDir() {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(table, "%s\t%s\n", name, size)
	}
	return table.Flush()
}

var listCommand = &cobra.Command{
	Use:          "list",
	Short:        "Print the tunes that would be served",
	Args:         cobra.NoArgs,
	RunE:         listMain,
	SilenceUsage: true,
}

// listConfiguration stores configuration for the list command.
var listConfiguration struct {
	// json prints the listing as JSON.
	json bool
}

func init() {
	flags := listCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&listConfiguration.json, "json", "j", false, "Print the listing as JSON")
}
