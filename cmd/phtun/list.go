package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caasmo/phtunnel/blocklist"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List blocked identifiers and global domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []blocklist.Entry
			if err := c.client().do(cmd.Context(), http.MethodGet, "/admin/identifiers", nil, &entries); err != nil {
				return err
			}
			var domains []string
			if err := c.client().do(cmd.Context(), http.MethodGet, "/admin/domains", nil, &domains); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 && len(domains) == 0 {
				fmt.Fprintln(out, "Blocklist is empty, all traffic is allowed.")
				return nil
			}

			if len(entries) > 0 {
				fmt.Fprintf(out, "%d blocked identifier(s):\n\n", len(entries))
				for _, e := range entries {
					fmt.Fprintf(out, "  %s (%s)\n", e.Identifier, e.Label)
					if len(e.BlockedDomains) > 0 {
						fmt.Fprintf(out, "    domains: %s\n", strings.Join(e.BlockedDomains, ", "))
					}
				}
			}

			if len(domains) > 0 {
				if len(entries) > 0 {
					fmt.Fprintln(out)
				}
				printDomains(cmd, fmt.Sprintf("%d global blocked domain(s):", len(domains)), domains)
			}
			return nil
		},
	}
}

func printDomains(cmd *cobra.Command, header string, domains []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", header)
	for _, d := range domains {
		fmt.Fprintf(out, "  %s\n", d)
	}
}
