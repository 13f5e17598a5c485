package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/hostdeck/internal/app"
	"github.com/artpar/hostdeck/internal/hosttree"
)

// NewMoveCommand creates the mv command.
func NewMoveCommand(global *GlobalOptions) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "mv HOST... --to FOLDER",
		Short: "Move hosts and folders into another folder",
		Long: `Move hosts and folders into another folder.

Moved folders are placed after the last folder of the destination and moved
hosts at its end. The new order is saved with the hosts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			nodes, err := a.FindAll(args)
			if err != nil {
				return err
			}
			container, err := a.Find(to)
			if err != nil {
				return err
			}

			payload := hosttree.NewDragPayload(a.Tree(), nodes)
			if payload == nil {
				return errors.New("nothing to move")
			}
			res, err := a.Apply(cmd.Context(), hosttree.Move{
				Payload: payload,
				Target:  hosttree.DropTarget{Container: container, Index: hosttree.AppendIndex},
			})
			if err != nil {
				return err
			}
			if !res.Applied {
				return errors.New("drop rejected")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d item(s)\n", len(res.Nodes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "/", "Destination folder id or name")

	return cmd
}

// NewCopyCommand creates the cp command.
func NewCopyCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cp HOST...",
		Short: "Duplicate hosts and folders next to themselves",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			nodes, err := a.FindAll(args)
			if err != nil {
				return err
			}
			res, err := a.Apply(cmd.Context(), hosttree.Copy{Nodes: nodes})
			for _, n := range res.Nodes {
				fmt.Fprintln(cmd.OutOrStdout(), a.Tree().Host(n).ID)
			}
			if err != nil {
				var copyErr *hosttree.CopyError
				if errors.As(err, &copyErr) && len(copyErr.Persisted) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "partially copied: %s\n", strings.Join(copyErr.Persisted, ", "))
				}
				return err
			}
			if !res.Applied {
				return errors.New("nothing to copy")
			}
			return nil
		},
	}
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(global *GlobalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm HOST...",
		Short: "Delete hosts and folders",
		Long:  "Delete hosts and folders. Folders are deleted with everything in them. Deleted hosts stay in storage until purged.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := hosttree.AlwaysConfirm
			if !yes {
				confirm = promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			a, err := openApp(cmd, global, app.WithConfirmer(confirm))
			if err != nil {
				return err
			}
			defer a.Close()

			nodes, err := a.FindAll(args)
			if err != nil {
				return err
			}
			res, err := a.Apply(cmd.Context(), hosttree.Remove{Nodes: nodes})
			if err != nil {
				return err
			}
			if !res.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d item(s)\n", len(res.Nodes))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// promptConfirmer asks on out and reads a y/N answer from in.
func promptConfirmer(in io.Reader, out io.Writer) hosttree.Confirmer {
	reader := bufio.NewReader(in)
	return hosttree.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		answer, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	})
}
