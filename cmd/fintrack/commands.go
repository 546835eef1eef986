package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/report"
)

func runAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add", e.stderr)
	entry := addEntryFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	all := map[string]bool{"date": true, "amount": true, "category": true, "desc": true}
	t, err := entry.apply(core.Transaction{}, all)
	if err != nil {
		return err
	}
	id, err := e.ledger.CreateTransaction(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Added transaction %d\n", id)
	return nil
}

func runUpdate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("update", e.stderr)
	id := fs.Int64("id", 0, "transaction id")
	entry := addEntryFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", errUsage)
	}

	set := setFlags(fs)
	delete(set, "id")
	if len(set) == 0 {
		return fmt.Errorf("%w: nothing to update", errUsage)
	}

	current, err := e.ledger.GetTransaction(ctx, *id)
	if err != nil {
		return err
	}
	updated, err := entry.apply(current, set)
	if err != nil {
		return err
	}
	if err := e.ledger.UpdateTransaction(ctx, *id, updated); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Updated transaction %d\n", *id)
	return nil
}

func runDelete(ctx context.Context, e *env, args []string) error {
	id, err := parseID("delete", e, args)
	if err != nil {
		return err
	}
	if err := e.ledger.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Deleted transaction %d\n", id)
	return nil
}

func runGet(ctx context.Context, e *env, args []string) error {
	id, err := parseID("get", e, args)
	if err != nil {
		return err
	}
	t, err := e.ledger.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return printTransactions(e.stdout, []core.Transaction{t})
}

// parseID accepts the id either as -id or as the only positional argument.
func parseID(name string, e *env, args []string) (int64, error) {
	fs := newFlagSet(name, e.stderr)
	id := fs.Int64("id", 0, "transaction id")
	if err := parseFlags(fs, args); err != nil {
		return 0, err
	}
	if *id == 0 && fs.NArg() == 1 {
		v, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid id %q", errUsage, fs.Arg(0))
		}
		*id = v
	}
	if *id <= 0 {
		return 0, fmt.Errorf("%w: a positive transaction id is required", errUsage)
	}
	return *id, nil
}

func runList(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("list", e.stderr)
	ff := addFilterFlags(fs)
	sf := addSortFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	f, err := ff.filter()
	if err != nil {
		return err
	}
	s, err := sf.sort()
	if err != nil {
		return err
	}

	txs, err := e.ledger.ListTransactions(ctx, f, s)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(e.stdout, "No transactions found.")
		return nil
	}
	return printTransactions(e.stdout, txs)
}

func runCategories(ctx context.Context, e *env, args []string) error {
	action := "list"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	switch action {
	case "list":
		cats, err := e.ledger.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintln(e.stdout, c)
		}
		return nil
	case "add", "remove":
		if len(args) != 1 {
			return fmt.Errorf("%w: categories %s <label>", errUsage, action)
		}
		if action == "add" {
			if err := e.ledger.AddCategory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "Added category %q\n", strings.TrimSpace(args[0]))
			return nil
		}
		if err := e.ledger.RemoveCategory(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "Removed category %q\n", strings.TrimSpace(args[0]))
		return nil
	default:
		return fmt.Errorf("%w: unknown categories action %q (want list, add or remove)", errUsage, action)
	}
}

func runReport(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fmt.Errorf("%w: report category|month [options]", errUsage)
	}
	kind := args[0]

	fs := newFlagSet("report "+kind, e.stderr)
	ff := addFilterFlags(fs)
	dense := fs.Bool("dense", false, "include months without transactions (month report only)")
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	f, err := ff.filter()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	switch kind {
	case "category":
		totals, err := e.ledger.CategoryTotals(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "CATEGORY\tTOTAL\t")
		for _, ct := range totals {
			fmt.Fprintf(w, "%s\t%s\t\n", ct.Category, core.FormatAmount(ct.Total))
		}
	case "month":
		months, err := e.ledger.MonthlyTotals(ctx, f, *dense)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "MONTH\tTOTAL\t")
		for _, mt := range months {
			fmt.Fprintf(w, "%s\t%s\t\n", mt.Month, core.FormatAmount(mt.Total))
		}
	default:
		return fmt.Errorf("%w: unknown report %q (want category or month)", errUsage, kind)
	}
	return w.Flush()
}

func runSummary(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("summary", e.stderr)
	ff := addFilterFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	f, err := ff.filter()
	if err != nil {
		return err
	}

	s, err := e.ledger.Summary(ctx, f)
	if err != nil {
		return err
	}
	printSummary(e.stdout, s)
	return nil
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("export", e.stderr)
	ff := addFilterFlags(fs)
	sf := addSortFlags(fs)
	out := fs.String("o", "-", "output file, - for stdout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	f, err := ff.filter()
	if err != nil {
		return err
	}
	s, err := sf.sort()
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err := e.ledger.ExportCSV(ctx, e.stdout, f, s)
		return err
	}

	file, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create %s: %w", *out, err)
	}
	n, err := e.ledger.ExportCSV(ctx, file, f, s)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", *out, cerr)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Exported %d transaction(s) to %s\n", n, *out)
	return nil
}

func runImport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("import", e.stderr)
	in := fs.String("f", "-", "input file, - for stdin")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var r io.Reader = e.stdin
	if *in != "-" {
		file, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("open %s: %w", *in, err)
		}
		defer file.Close()
		r = file
	}

	res, err := e.ledger.ImportCSV(ctx, r)
	fmt.Fprintf(e.stdout, "Imported %d row(s), rejected %d\n", len(res.Accepted), len(res.Rejected))
	for _, rej := range res.Rejected {
		fmt.Fprintf(e.stdout, "  %s\n", rej.Error())
	}
	return err
}

func runChart(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("chart", e.stderr)
	ff := addFilterFlags(fs)
	format := fs.String("format", "png", "image format: png or svg")
	dir := fs.String("out", ".", "output directory")
	width := fs.Int("width", 0, "image width in pixels (default from config)")
	height := fs.Int("height", 0, "image height in pixels (default from config)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	f, err := ff.filter()
	if err != nil {
		return err
	}
	fmtOpt, err := chart.ParseFormat(*format)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	charts, err := e.ledger.RenderCharts(ctx, f, chart.Options{Width: *width, Height: *height, Format: fmtOpt})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	images := []struct {
		name string
		data []byte
	}{
		{"categories." + fmtOpt.Extension(), charts.Category},
		{"monthly." + fmtOpt.Extension(), charts.Monthly},
	}
	for _, img := range images {
		path := filepath.Join(*dir, img.name)
		if err := os.WriteFile(path, img.data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(e.stdout, "Wrote %s\n", path)
	}
	return nil
}

func printTransactions(w io.Writer, txs []core.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, core.FormatAmount(t.Amount), t.Category, t.Description)
	}
	return tw.Flush()
}

func printSummary(w io.Writer, s report.Summary) {
	fmt.Fprintf(w, "Transactions: %d\n", s.Count)
	fmt.Fprintf(w, "Income:       %s\n", core.FormatAmount(s.Income))
	fmt.Fprintf(w, "Expense:      %s\n", core.FormatAmount(s.Expense))
	fmt.Fprintf(w, "Net:          %s\n", core.FormatAmount(s.Net))
}
