package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/artpar/hostdeck/internal/app"
	"github.com/artpar/hostdeck/internal/hosttree"
	"github.com/artpar/hostdeck/internal/tui/views"
)

// GlobalOptions holds flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DataDir    string
	Storage    string
	Verbose    bool
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "hostdeck",
		Short:         "hostdeck - organise SSH and serial hosts in folders",
		Long:          "hostdeck keeps a tree of hosts and folders. Run without a command to open the TUI.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "~/.hostdeck/config.yaml", "Config file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "Data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", "", "Storage backend: sqlite or yaml (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		NewListCommand(opts),
		NewAddCommand(opts),
		NewMkdirCommand(opts),
		NewRenameCommand(opts),
		NewMoveCommand(opts),
		NewCopyCommand(opts),
		NewRemoveCommand(opts),
		NewTargetsCommand(opts),
		NewExportCommand(opts),
		NewImportCommand(opts),
		NewPurgeCommand(opts),
	)

	return cmd
}

// openApp loads the config, applies flag overrides and opens the app.
func openApp(cmd *cobra.Command, opts *GlobalOptions, extra ...app.Option) (*app.App, error) {
	cfg, err := app.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.Storage != "" {
		cfg.Storage = opts.Storage
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	appOpts := []app.Option{
		app.WithConfig(cfg),
		app.WithLogger(app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)),
	}
	return app.New(cmd.Context(), append(appOpts, extra...)...)
}

// tuiModel wraps the MainView for bubbletea
type tuiModel struct {
	view *views.MainView
}

func (m tuiModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.view.Update(msg)
	m.view = updated.(*views.MainView)
	return m, cmd
}

func (m tuiModel) View() string {
	return m.view.View()
}

// runTUI starts the TUI application
func runTUI(cmd *cobra.Command, opts *GlobalOptions) error {
	// The tree view asks for confirmation itself before removing.
	application, err := openApp(cmd, opts, app.WithConfirmer(hosttree.AlwaysConfirm))
	if err != nil {
		return err
	}
	defer application.Close()

	view := views.NewMainView(cmd.Context(), application.Dispatcher())
	defer view.Close()

	p := tea.NewProgram(tuiModel{view: view}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
