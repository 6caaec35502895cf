package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/caasmo/phtunnel/blocklist"
)

func newBlockCmd(c *cli) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:     "block <identifier>",
		Aliases: []string{"deny"},
		Short:   "Block a project identifier",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry blocklist.Entry
			body := map[string]string{"identifier": args[0], "label": label}
			if err := c.client().do(cmd.Context(), http.MethodPost, "/admin/identifiers", body, &entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blocked identifier %s (%s)\n", entry.Identifier, entry.Label)
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "human-readable label (required)")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}

func newUnblockCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "unblock <identifier>",
		Aliases: []string{"allow"},
		Short:   "Unblock a project identifier",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/admin/identifiers/" + url.PathEscape(args[0])
			if err := c.client().do(cmd.Context(), http.MethodDelete, path, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unblocked identifier %s\n", args[0])
			return nil
		},
	}
}
