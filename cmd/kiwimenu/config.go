package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/kiwimenu/internal/config"
	"github.com/jmylchreest/kiwimenu/internal/theme"
)

var configOpts struct {
	force  bool
	format string
}

// configCmd represents the config command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage the configuration",
	Long: `Inspect and manage the kiwimenu configuration.

Use 'kiwimenu config show' to print the effective configuration.
Use 'kiwimenu config path' to print the config file location.
Use 'kiwimenu config validate [file]' to check a config file.
Use 'kiwimenu config init' to write the defaults to the config file.
Use 'kiwimenu config themes' to list the available themes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing the config
		return configShowRun(cmd, args)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  configShowRun,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  configPathRun,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a config file for errors",
	Long: `Parse and validate a config file without applying it.

The running daemon keeps its current configuration when a reload fails,
so validating before saving avoids silently ignored edits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: configValidateRun,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE:  configInitRun,
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE:  configThemesRun,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configThemesCmd)

	for _, cmd := range []*cobra.Command{configCmd, configShowCmd, configThemesCmd} {
		cmd.Flags().StringVarP(&configOpts.format, "format", "f", "toml",
			"Output format (toml, json, yaml)")
	}
	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing config file")
}

func configFilePath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

func configShowRun(cmd *cobra.Command, args []string) error {
	if configOpts.format == "toml" {
		data, err := toml.Marshal(getConfig())
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return writeValue(cmd.OutOrStdout(), configOpts.format, getConfig())
}

func configPathRun(cmd *cobra.Command, args []string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
	return err
}

func configValidateRun(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	if len(args) > 0 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := config.Parse(data, config.DefaultConfig()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	return err
}

func configInitRun(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	if !configOpts.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check config file: %w", err)
		}
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return err
}

func configThemesRun(cmd *cobra.Command, args []string) error {
	themes, err := theme.ListAvailableThemes(theme.ThemesDir())
	if err != nil {
		logger.Warn("failed to list user themes", "error", err)
	}

	if configOpts.format != "toml" {
		return writeValue(cmd.OutOrStdout(), configOpts.format, themes)
	}

	current := getConfig().Theme.Name
	var sb strings.Builder
	for _, t := range themes {
		marker := " "
		if t.Name == current {
			marker = "*"
		}
		source := "bundled"
		if t.Path != "" {
			source = t.Path
		}
		fmt.Fprintf(&sb, "%s %-20s %s\n", marker, t.Name, dimStyle.Render(source))
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), sb.String())
	return err
}
