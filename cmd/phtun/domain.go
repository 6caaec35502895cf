package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/caasmo/phtunnel/blocklist"
)

func newDomainCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Manage blocked domains",
	}
	cmd.AddCommand(
		newDomainListCmd(c),
		newDomainBlockCmd(c),
		newDomainUnblockCmd(c),
	)
	return cmd
}

func newDomainListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list [identifier]",
		Short: "List blocked domains (global or per identifier)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				id := args[0]
				var entry blocklist.Entry
				err := c.client().do(cmd.Context(), http.MethodGet, "/admin/identifiers/"+url.PathEscape(id), nil, &entry)
				var apiErr *APIError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
					return fmt.Errorf("identifier %s %w", id, ErrNotFound)
				}
				if err != nil {
					return err
				}
				if len(entry.BlockedDomains) == 0 {
					fmt.Fprintf(out, "No blocked domains for identifier %s.\n", id)
					return nil
				}
				printDomains(cmd, fmt.Sprintf("Blocked domains for %s:", id), entry.BlockedDomains)
				return nil
			}

			var domains []string
			if err := c.client().do(cmd.Context(), http.MethodGet, "/admin/domains", nil, &domains); err != nil {
				return err
			}
			if len(domains) == 0 {
				fmt.Fprintln(out, "No global blocked domains.")
				return nil
			}
			printDomains(cmd, fmt.Sprintf("%d global blocked domain(s):", len(domains)), domains)
			return nil
		},
	}
}

func newDomainBlockCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "block <domain> | <identifier> <domain>",
		Aliases: []string{"deny"},
		Short:   "Block a domain (1 arg = global, 2 args = for one identifier)",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				body := map[string]string{"domain": args[0]}
				if err := c.client().do(cmd.Context(), http.MethodPost, "/admin/domains", body, nil); err != nil {
					return err
				}
				fmt.Fprintf(out, "Blocked domain globally: %s\n", args[0])
				return nil
			}

			id, domain := args[0], args[1]
			path := "/admin/identifiers/" + url.PathEscape(id) + "/blocked-domains"
			if err := c.client().do(cmd.Context(), http.MethodPost, path, map[string]string{"domain": domain}, nil); err != nil {
				return err
			}
			fmt.Fprintf(out, "Blocked domain %s for identifier %s\n", domain, id)
			return nil
		},
	}
}

func newDomainUnblockCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "unblock <domain> | <identifier> <domain>",
		Aliases: []string{"allow"},
		Short:   "Unblock a domain (1 arg = global, 2 args = for one identifier)",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := c.client().do(cmd.Context(), http.MethodDelete, "/admin/domains/"+url.PathEscape(args[0]), nil, nil); err != nil {
					return err
				}
				fmt.Fprintf(out, "Unblocked domain globally: %s\n", args[0])
				return nil
			}

			id, domain := args[0], args[1]
			path := "/admin/identifiers/" + url.PathEscape(id) + "/blocked-domains/" + url.PathEscape(domain)
			if err := c.client().do(cmd.Context(), http.MethodDelete, path, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(out, "Unblocked domain %s for identifier %s\n", domain, id)
			return nil
		},
	}
}
