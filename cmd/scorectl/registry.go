package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"move-improve-workers/internal/common/validation"
	"move-improve-workers/pkg/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Export or check the activity registry holding the job input schemas",
}

var registryExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the built-in registry to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := registry.Default().Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registry written to %s\n", args[0])
		return nil
	},
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a registry file and compile its input schemas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(args[0])
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Validate(); err != nil {
			return err
		}
		if _, err := validation.NewSchemaValidator(reg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

func init() {
	registryCmd.AddCommand(registryExportCmd)
	registryCmd.AddCommand(registryValidateCmd)
}
