package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI config",
	}
	cmd.AddCommand(
		newConfigInitCmd(c),
		newConfigSetCmd(c),
		newConfigGetCmd(c),
		newConfigPathCmd(c),
	)
	return cmd
}

func newConfigInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create config interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			url := ask(in, out, "Server URL", defaultURL)
			key := ask(in, out, "Admin API key", "")

			if err := saveConfig(c.configPath, &cliConfig{URL: url, Key: key}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Config saved to %s\n", c.configPath)
			return nil
		},
	}
}

// ask prints the question with its default and returns the trimmed answer,
// or def when the answer is empty.
func ask(in *bufio.Reader, out io.Writer, question, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s (%s): ", question, def)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}
	line, _ := in.ReadString('\n')
	if answer := strings.TrimSpace(line); answer != "" {
		return answer
	}
	return def
}

func newConfigSetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if !isValidKey(key) {
				return fmt.Errorf("%w: %s. Valid keys: url, key", ErrInvalidKey, key)
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			cfg.set(key, value)
			if err := saveConfig(c.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue(key, value))
			return nil
		},
	}
}

func newConfigGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show config values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				key := args[0]
				if !isValidKey(key) {
					return fmt.Errorf("%w: %s. Valid keys: url, key", ErrInvalidKey, key)
				}
				v := cfg.get(key)
				if v == "" {
					v = "(not set)"
				}
				fmt.Fprintln(out, v)
				return nil
			}

			fmt.Fprintf(out, "Config: %s\n\n", c.configPath)
			fmt.Fprintf(out, "  url = %s\n", displayValue(configKeyURL, cfg.URL))
			fmt.Fprintf(out, "  key = %s\n", displayValue(configKeyKey, cfg.Key))
			return nil
		},
	}
}

func newConfigPathCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.configPath)
			return nil
		},
	}
}

// displayValue masks the admin key.
func displayValue(key, value string) string {
	switch {
	case value == "":
		return "(not set)"
	case key == configKeyKey:
		return "***"
	}
	return value
}
