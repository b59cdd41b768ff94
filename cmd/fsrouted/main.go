// Command fsrouted is a development server for a directory of
// file-system-discovered routes: it loads routes once, serves them,
// and hot-reloads the route table as files change (§4.3).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "fsrouted",
		Short: "Development server for fsroute-discovered routes",
	}
	root.AddCommand(newDevCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
