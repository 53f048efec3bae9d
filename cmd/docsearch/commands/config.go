package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/docsearch/internal/config"
	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/paths"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage docsearch configuration",
	Long: `Manage docsearch configuration stored in ~/.config/docsearch/config.yaml.

Without a subcommand, lists all configuration values. Every value can be
overridden through a DOCSEARCH_ environment variable, e.g.
DOCSEARCH_SEARCH_LIMIT=20.`,
	Example: `  # List all configuration
  docsearch config

  # Get a specific value
  docsearch config get search.limit

  # Write the default configuration
  docsearch config init

See Also: docsearch query, docsearch serve`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys.`,
	Example: `  # Get the result limit
  docsearch config get search.limit

See Also: docsearch config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	Example: `  # List all configuration
  docsearch config list

See Also: docsearch config get`,
	RunE: runConfigList,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Long: `Write the default configuration to ~/.config/docsearch/config.yaml.

An existing file is kept unless --force is given.`,
	Example: `  # Create the config file
  docsearch config init

  # Replace an existing config file
  docsearch config init --force

See Also: docsearch config list`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	return configGet(cmd.OutOrStdout(), args[0])
}

func configGet(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case map[string]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "marshaling config")
		}
		fmt.Fprint(w, string(data))
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	return configList(cmd.OutOrStdout())
}

func configList(w io.Writer) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if path := config.Path(); path != "" {
		fmt.Fprintf(w, "# %s\n", path)
	}
	fmt.Fprint(w, string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = paths.ConfigFile()
	}
	if err := config.WriteDefault(path, configInitForce); err != nil {
		return errors.NewUserError(err, "Use --force to overwrite the existing file")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
