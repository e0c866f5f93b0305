package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grptx/inbucket/internal/route"
)

// routeCmd shows how a URL is routed inside the client.
var routeCmd = &cobra.Command{
	Use:   "route <url>",
	Short: "Show which page a URL opens",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoute,
}

func runRoute(cmd *cobra.Command, args []string) error {
	r := route.Parse(args[0])
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Route: %s\n", r)
	if path, ok := r.Path(); ok {
		fmt.Fprintf(out, "Path:  %s\n", path)
	} else {
		fmt.Fprintln(out, "Path:  (none)")
	}
	return nil
}
