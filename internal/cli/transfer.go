package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write all hosts to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d host(s) to %s\n", n, args[0])
			return nil
		},
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add or update hosts from a YAML file",
		Long:  "Add or update hosts from a YAML file written by export. Hosts keep their ids, so importing a file twice changes nothing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d host(s)\n", n)
			return nil
		},
	}
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Permanently erase deleted hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d host(s)\n", n)
			return nil
		},
	}
}
