package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ukaji3/gridsync-go/internal/tui"
	"github.com/ukaji3/gridsync-go/pkg/gridsync"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/filter"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/grid"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/output"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/remote"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/values"
	"github.com/ukaji3/gridsync-go/pkg/gridsync/xlsx"
)

var (
	where  string
	asJSON bool
	pretty bool
	sheet  string
)

var errNoTTY = errors.New("edit needs an interactive terminal")

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Load the sheet and print it",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
	cmd.Flags().StringVarP(&where, "where", "w", "", `Row filter, e.g. 'Amount > 10 && col("Status Message") == nil'`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive grid editor",
		Args:  cobra.NoArgs,
		RunE:  runEdit,
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <row> <column> <value>",
		Short: "Change one cell and save",
		Long: `set loads the sheet, edits one cell and writes the table back. row is 1-based and
counts data rows only. column is a column name or a 1-based column number.`,
		Args: cobra.ExactArgs(3),
		RunE: runSet,
	}
}

func newPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull <output.xlsx>",
		Short: "Copy the remote sheet into a workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runPull,
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: "+xlsx.DefaultSheet+")")
	return cmd
}

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <input.xlsx>",
		Short: "Replace the remote sheet with a workbook's table",
		Args:  cobra.ExactArgs(1),
		RunE:  runPush,
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: first sheet)")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctrl := gridsync.NewController(opts, logger)
	loadErr := ctrl.Load(cmd.Context())
	v := ctrl.View()

	var keep []int
	if where != "" && loadErr == nil {
		f, err := filter.Compile(where, v.Columns)
		if err != nil {
			return err
		}
		if keep, err = f.Select(v.Rows); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		data, err := output.ToJSON(output.FromView(v, keep), pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprint(out, tui.Render(v, keep))
	}

	if loadErr != nil {
		return fmt.Errorf("load failed: %w", loadErr)
	}
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errNoTTY
	}
	return tui.Run(cmd.Context(), gridsync.NewController(opts, logger))
}

func runSet(cmd *cobra.Command, args []string) error {
	row, err := strconv.Atoi(args[0])
	if err != nil || row < 1 {
		return fmt.Errorf("invalid row %q: must be a positive number", args[0])
	}

	ctx := cmd.Context()
	ctrl := gridsync.NewController(opts, logger)
	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	if err := editCell(ctrl, row-1, args[1], args[2]); err != nil {
		return err
	}
	if err := ctrl.Save(ctx); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	v := ctrl.View()
	fmt.Fprintln(cmd.OutOrStdout(), v.Status)
	return nil
}

// editCell addresses column by name first, then as a 1-based number.
func editCell(ctrl *grid.Controller, row int, column, text string) error {
	if ctrl.View().ColumnIndex(column) >= 0 {
		return ctrl.EditColumn(row, column, text)
	}
	if n, err := strconv.Atoi(column); err == nil {
		return ctrl.Edit(row, n-1, text)
	}
	return ctrl.EditColumn(row, column, text)
}

func runPull(cmd *cobra.Command, args []string) error {
	client := gridsync.NewClient(opts, logger)
	book := xlsx.New(args[0], sheet, opts.LockedColumns)
	return transfer(cmd, relay{from: client.Endpoint(opts.Endpoint), to: book}, fmt.Sprintf("wrote %s", book.Path()))
}

func runPush(cmd *cobra.Command, args []string) error {
	client := gridsync.NewClient(opts, logger)
	book := xlsx.New(args[0], sheet, opts.LockedColumns)
	return transfer(cmd, relay{from: book, to: client.Endpoint(opts.Endpoint)}, "")
}

// transfer loads through r and saves the loaded table back through it.
func transfer(cmd *cobra.Command, r relay, done string) error {
	ctx := cmd.Context()
	ctrl := grid.New(r, opts.GridConfig(logger))
	if err := ctrl.Load(ctx); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	if len(ctrl.View().Columns) == 0 {
		return fmt.Errorf("nothing to copy: %s", grid.EmptyNoColumns)
	}
	if err := ctrl.Save(ctx); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}

	if done == "" {
		done = ctrl.View().Status
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

// relay reads from one source and writes to another.
type relay struct {
	from, to grid.Source
}

func (r relay) Load(ctx context.Context) (*remote.Payload, error) {
	return r.from.Load(ctx)
}

func (r relay) Save(ctx context.Context, columns []string, rows [][]values.Scalar) (remote.WriteResult, error) {
	return r.to.Save(ctx, columns, rows)
}
