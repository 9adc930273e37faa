package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nisimpson/bizdir"
	"github.com/nisimpson/bizdir/tui"
	"github.com/nisimpson/bizdir/view"
)

func (a *app) uiCmd() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Browse businesses in an interactive table",
		Long: `Opens a terminal table of every business with search, status and date
filters, sorting, pagination, and create and delete actions.

Logs are discarded unless --log-file is set, since the table owns the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if logFile != "" {
				zc := zap.NewProductionConfig()
				zc.OutputPaths = []string{logFile}
				zc.ErrorOutputPaths = []string{logFile}
				l, err := zc.Build()
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer func() { _ = l.Sync() }()
				logger = l
			}

			model := tui.New(a.client(), tui.Options{
				Logger:  logger,
				Timeout: a.cfg.GetClientTimeout(),
				PerPage: a.cfg.Client.PerPage,
			})

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("ui failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	return cmd
}

type listOptions struct {
	searchField string
	query       string
	status      string
	from        string
	to          string
	sortField   string
	desc        bool
	page        int
	perPage     int
	all         bool
	asJSON      bool
}

func (a *app) listCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List businesses",
		Long: `Fetches every business and prints one page of it.

The records go through the same pipeline as the interactive table: search,
then status and date filters, then sort, then pagination.

Example:
  bizdir list --query acme --status active --sort name --per-page 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client().List(cmd.Context())
			if err != nil {
				return err
			}

			if opts.perPage == 0 {
				opts.perPage = a.cfg.Client.PerPage
			}
			s, err := opts.state(items)
			if err != nil {
				return err
			}

			page := view.Window(s)
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(page)
			}
			printTable(cmd.OutOrStdout(), s, page)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.searchField, "search-field", string(view.FieldName), "Field searched by --query (createdAt, busId, name, status)")
	f.StringVarP(&opts.query, "query", "q", "", "Case-insensitive substring to search for")
	f.StringVar(&opts.status, "status", string(view.StatusAll), "Status filter (All, active, inactive)")
	f.StringVar(&opts.from, "from", "", "Earliest creation date, YYYY-MM-DD (needs --to)")
	f.StringVar(&opts.to, "to", "", "Latest creation date, YYYY-MM-DD (needs --from)")
	f.StringVar(&opts.sortField, "sort", string(view.FieldCreatedAt), "Sort field (createdAt, busId, name, status)")
	f.BoolVar(&opts.desc, "desc", false, "Sort descending")
	f.IntVar(&opts.page, "page", 1, "Page number")
	f.IntVar(&opts.perPage, "per-page", 0, "Rows per page (5, 10, 15 or 20; defaults to client.per_page)")
	f.BoolVar(&opts.all, "all", false, "Print every matching row on one page")
	f.BoolVar(&opts.asJSON, "json", false, "Print the page as JSON")

	return cmd
}

// state replays the options as view actions over items.
func (o listOptions) state(items []bizdir.Business) (view.State, error) {
	search, err := parseField(o.searchField)
	if err != nil {
		return view.State{}, err
	}
	sortBy, err := parseField(o.sortField)
	if err != nil {
		return view.State{}, err
	}

	s := view.Reduce(view.NewState(), view.Loaded{Items: items})
	if o.perPage > 0 {
		s = view.Reduce(s, view.SetPerPage{PerPage: o.perPage})
	}

	if o.query != "" {
		s = view.Reduce(s, view.OpenSearch{Field: search})
		s = view.Reduce(s, view.SetQuery{Query: o.query})
	}

	if o.status != string(view.StatusAll) || o.from != "" || o.to != "" {
		s = view.Reduce(s, view.OpenFilter{})
		s = view.Reduce(s, view.EditFilter{Status: view.Status(o.status), From: o.from, To: o.to})
		s = view.Reduce(s, view.ApplyFilter{})
	}

	// Every toggle flips the direction, starting from ascending.
	s = view.Reduce(s, view.ToggleSort{Field: sortBy})
	if !o.desc {
		s = view.Reduce(s, view.ToggleSort{Field: sortBy})
	}

	if o.all {
		s = view.Reduce(s, view.SetPerPage{PerPage: max(len(view.Derive(s)), 1)})
		return view.Reduce(s, view.GoToPage{Page: 1}), nil
	}
	return view.Reduce(s, view.GoToPage{Page: o.page}), nil
}

func parseField(name string) (view.Field, error) {
	for _, f := range view.Fields {
		if strings.EqualFold(string(f), name) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", name)
}

func printTable(w io.Writer, s view.State, page []bizdir.Business) {
	headers := make([]string, len(view.Fields))
	for i, f := range view.Fields {
		headers[i] = f.Label()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, b := range page {
		row := make([]string, len(view.Fields))
		for i, f := range view.Fields {
			row[i] = f.Value(b)
		}
		t.Row(row...)
	}

	fmt.Fprintln(w, t.Render())

	total := len(view.Derive(s))
	if total == 0 {
		fmt.Fprintln(w, "No businesses found")
		return
	}
	fmt.Fprintf(w, "Page %d of %d (%d of %d businesses)\n", s.Page, s.Pages(), total, len(s.Original))
}

func (a *app) createCmd() *cobra.Command {
	var in bizdir.CreateInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a business",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.client().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.logger.Debug("business created", zap.String("busId", b.BusID))
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully added business %s (%s)\n", b.BusID, b.CreatedAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Business name")
	cmd.Flags().StringVar(&in.Status, "status", "", "Business status, e.g. active or inactive")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <busId>",
		Short: "Delete a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Debug("business deleted", zap.String("busId", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted business %s\n", args[0])
			return nil
		},
	}
}
