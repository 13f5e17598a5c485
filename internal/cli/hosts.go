package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/artpar/hostdeck/internal/core"
	"github.com/artpar/hostdeck/internal/hosttree"
)

// ListOptions holds options for the ls command.
type ListOptions struct {
	All  bool
	JSON bool
}

// NewListCommand creates the ls command.
func NewListCommand(global *GlobalOptions) *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "ls [FOLDER]",
		Short: "List the host tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			start := a.Tree().Root()
			if len(args) == 1 {
				if start, err = a.Find(args[0]); err != nil {
					return err
				}
			}
			var deleted []core.Host
			if opts.All {
				if deleted, err = a.Store().ListDeleted(cmd.Context()); err != nil {
					return err
				}
			}

			if opts.JSON {
				return outputTreeJSON(cmd.OutOrStdout(), a.Tree(), start, deleted)
			}
			outputTree(cmd.OutOrStdout(), a.Tree(), start, deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Also list deleted hosts")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")

	return cmd
}

type hostJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Protocol string     `json:"protocol"`
	Target   string     `json:"target,omitempty"`
	Deleted  bool       `json:"deleted,omitempty"`
	Children []hostJSON `json:"children,omitempty"`
}

func toHostJSON(t *hosttree.Tree, n hosttree.NodeID) hostJSON {
	h := t.Host(n)
	out := hostJSON{ID: h.ID, Name: h.Name, Protocol: h.Protocol.String(), Target: h.Target()}
	for _, c := range t.Children(n) {
		out.Children = append(out.Children, toHostJSON(t, c))
	}
	return out
}

func outputTreeJSON(w io.Writer, t *hosttree.Tree, start hosttree.NodeID, deleted []core.Host) error {
	result := map[string]any{"tree": toHostJSON(t, start)}
	if deleted != nil {
		list := make([]hostJSON, 0, len(deleted))
		for _, h := range deleted {
			list = append(list, hostJSON{ID: h.ID, Name: h.Name, Protocol: h.Protocol.String(), Target: h.Target(), Deleted: true})
		}
		result["deleted"] = list
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

var (
	folderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true)
)

func outputTree(w io.Writer, t *hosttree.Tree, start hosttree.NodeID, deleted []core.Host) {
	t.Walk(start, func(n hosttree.NodeID, depth int) bool {
		if n == start {
			return true
		}
		h := t.Host(n)
		indent := strings.Repeat("  ", depth-1)
		if h.IsFolder() {
			fmt.Fprintf(w, "%s%s %s\n", indent, folderStyle.Render(h.Name+"/"), targetStyle.Render("("+h.ID+")"))
			return true
		}
		fmt.Fprintf(w, "%s%s  %s %s\n", indent, h.Name, targetStyle.Render(h.Target()), targetStyle.Render("("+h.ID+")"))
		return true
	})

	if len(deleted) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Deleted:")
		for _, h := range deleted {
			fmt.Fprintf(w, "  %s %s\n", deletedStyle.Render(h.Name), targetStyle.Render("("+h.ID+")"))
		}
	}
}

// AddOptions holds options for the add command.
type AddOptions struct {
	Protocol   string
	Parent     string
	Address    string
	Port       int
	Username   string
	SerialPort string
	BaudRate   int
	Remark     string
	Options    []string
}

// NewAddCommand creates the add command.
func NewAddCommand(global *GlobalOptions) *cobra.Command {
	opts := &AddOptions{}

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocol, err := core.ParseProtocol(opts.Protocol)
			if err != nil {
				return err
			}
			if protocol == core.ProtocolFolder {
				return fmt.Errorf("use mkdir to create folders")
			}
			options, err := parseOptions(opts.Options)
			if err != nil {
				return err
			}

			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			parent, err := a.Find(opts.Parent)
			if err != nil {
				return err
			}
			host := core.Host{
				Name:       args[0],
				Protocol:   protocol,
				Address:    opts.Address,
				Port:       opts.Port,
				Username:   opts.Username,
				SerialPort: opts.SerialPort,
				BaudRate:   opts.BaudRate,
				Remark:     opts.Remark,
				Options:    options,
			}
			res, err := a.Apply(cmd.Context(), hosttree.NewHost{Parent: parent, Host: host})
			if err != nil {
				return err
			}
			if !res.Applied {
				return fmt.Errorf("%s is not a folder", opts.Parent)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Tree().Host(res.Nodes[0]).ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Protocol, "protocol", "p", "ssh", "Protocol: ssh, serial or sftppty")
	cmd.Flags().StringVar(&opts.Parent, "parent", "/", "Parent folder id or name")
	cmd.Flags().StringVar(&opts.Address, "address", "", "Host address")
	cmd.Flags().IntVar(&opts.Port, "port", 22, "Port")
	cmd.Flags().StringVarP(&opts.Username, "user", "u", "", "Username")
	cmd.Flags().StringVar(&opts.SerialPort, "serial-port", "", "Serial device")
	cmd.Flags().IntVar(&opts.BaudRate, "baud", 0, "Serial baud rate")
	cmd.Flags().StringVar(&opts.Remark, "remark", "", "Free-form note")
	cmd.Flags().StringArrayVarP(&opts.Options, "option", "o", nil, "Extra option (format: key=value)")

	return cmd
}

// parseOptions converts key=value strings to a map.
func parseOptions(list []string) (map[string]string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	options := make(map[string]string, len(list))
	for _, o := range list {
		key, value, ok := strings.Cut(o, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q, want key=value", o)
		}
		options[key] = strings.TrimSpace(value)
	}
	return options, nil
}

// NewMkdirCommand creates the mkdir command.
func NewMkdirCommand(global *GlobalOptions) *cobra.Command {
	var parentRef string

	cmd := &cobra.Command{
		Use:   "mkdir [NAME]",
		Short: "Create a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			parent, err := a.Find(parentRef)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			res, err := a.Apply(cmd.Context(), hosttree.NewFolder{Parent: parent, Name: name})
			if err != nil {
				return err
			}
			if !res.Applied {
				return fmt.Errorf("%s is not a folder", parentRef)
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Tree().Host(res.Nodes[0]).ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentRef, "parent", "/", "Parent folder id or name")
	return cmd
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename HOST NAME",
		Short: "Rename a host or folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, global)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Find(args[0])
			if err != nil {
				return err
			}
			res, err := a.Apply(cmd.Context(), hosttree.Rename{Node: n, Name: args[1]})
			if err != nil {
				return err
			}
			if !res.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to rename")
			}
			return nil
		},
	}
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand(global *GlobalOptions) *cobra.Command {
	var sftp, pty bool

	cmd := &cobra.Command{
		Use:   "targets HOST...",
		Short: "Print connection targets in and below the given hosts",
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
			paths := hosttree.PathsOf(a.Tree(), nodes...)

			var list []core.Host
			if sftp || pty {
				list = hosttree.SFTPTargets(a.Tree(), paths, pty)
			} else {
				list = hosttree.OpenTargets(a.Tree(), paths)
			}
			for _, h := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", h.Name, h.Protocol, h.Target())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sftp, "sftp", false, "Only SSH hosts, for SFTP")
	cmd.Flags().BoolVar(&pty, "pty", false, "Like --sftp, rewritten to the SFTP PTY protocol")
	return cmd
}
