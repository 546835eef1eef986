package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

// parseFlags wraps flag parse failures as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

type filterFlags struct {
	month      string
	from       string
	to         string
	category   string
	categories string
	contains   string
	min        string
	max        string
	limit      int
}

func addFilterFlags(fs *flag.FlagSet) *filterFlags {
	f := &filterFlags{}
	fs.StringVar(&f.month, "month", "", "shorthand for -from/-to covering one month (YYYY-MM)")
	fs.StringVar(&f.from, "from", "", "first date to include (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "last date to include (YYYY-MM-DD)")
	fs.StringVar(&f.category, "category", "", "only this category")
	fs.StringVar(&f.categories, "categories", "", "comma separated list of categories")
	fs.StringVar(&f.contains, "contains", "", "description contains text (case-insensitive)")
	fs.StringVar(&f.min, "min", "", "minimum amount, inclusive")
	fs.StringVar(&f.max, "max", "", "maximum amount, inclusive")
	fs.IntVar(&f.limit, "limit", 0, "maximum number of rows (0 for all)")
	return f
}

func (f *filterFlags) filter() (core.Filter, error) {
	out := core.Filter{
		Category:            strings.TrimSpace(f.category),
		DescriptionContains: f.contains,
		Limit:               f.limit,
	}

	var err error
	if f.month != "" {
		if f.from != "" || f.to != "" {
			return core.Filter{}, fmt.Errorf("%w: -month cannot be combined with -from or -to", errUsage)
		}
		ym, err := core.ParseYearMonth(f.month)
		if err != nil {
			return core.Filter{}, err
		}
		out.From, out.To = ym.FirstDay(), ym.LastDay()
	}
	if f.from != "" {
		if out.From, err = core.ParseDate(f.from); err != nil {
			return core.Filter{}, err
		}
	}
	if f.to != "" {
		if out.To, err = core.ParseDate(f.to); err != nil {
			return core.Filter{}, err
		}
	}
	for _, c := range strings.Split(f.categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out.Categories = append(out.Categories, c)
		}
	}
	if out.MinAmount, err = optionalAmount(f.min); err != nil {
		return core.Filter{}, err
	}
	if out.MaxAmount, err = optionalAmount(f.max); err != nil {
		return core.Filter{}, err
	}
	return out, out.Validate()
}

func optionalAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := core.ParseAmount(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type sortFlags struct {
	field string
	asc   bool
}

func addSortFlags(fs *flag.FlagSet) *sortFlags {
	s := &sortFlags{}
	fs.StringVar(&s.field, "sort", "date", "sort by date, amount or category")
	fs.BoolVar(&s.asc, "asc", false, "ascending order (default newest or largest first)")
	return s
}

func (s *sortFlags) sort() (core.Sort, error) {
	field, err := core.ParseSortField(s.field)
	if err != nil {
		return core.Sort{}, err
	}
	return core.Sort{Field: field, Asc: s.asc}, nil
}

type entryFlags struct {
	date        string
	amount      string
	category    string
	description string
}

func addEntryFlags(fs *flag.FlagSet) *entryFlags {
	e := &entryFlags{}
	fs.StringVar(&e.date, "date", "", "transaction date (YYYY-MM-DD)")
	fs.StringVar(&e.amount, "amount", "", "signed amount, negative for expenses")
	fs.StringVar(&e.category, "category", "", "category label")
	fs.StringVar(&e.description, "desc", "", "free text description")
	return e
}

// apply overwrites the fields of t named in set.
func (e *entryFlags) apply(t core.Transaction, set map[string]bool) (core.Transaction, error) {
	var err error
	if set["date"] {
		if t.Date, err = core.ParseDate(e.date); err != nil {
			return t, err
		}
	}
	if set["amount"] {
		if t.Amount, err = core.ParseAmount(e.amount); err != nil {
			return t, err
		}
	}
	if set["category"] {
		t.Category = e.category
	}
	if set["desc"] {
		t.Description = e.description
	}
	return t, nil
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
