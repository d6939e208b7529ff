package commands

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/klabast/wb-services/canada-holidays/internal/app"
	"github.com/klabast/wb-services/canada-holidays/internal/holidays"
)

// List handles the list subcommand: prints the holidays of one province and year
func List(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(app.ModeList, flag.ContinueOnError)
	configPath := configFlag(fs)
	year := fs.Int("year", time.Now().Year(), "Year to list")
	province := fs.String("province", "", "Province or territory code (default: configured default)")
	kinds := fs.String("kinds", "", "Comma-separated kinds to keep: federal, optional, statutory")
	date := fs.String("date", "", "Only report whether this YYYY-MM-DD date is a holiday")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: canada-holidays list [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the federal and provincial holidays of a province.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := app.LoadConfig(resolveConfigPath(*configPath))
	if err != nil {
		return err
	}
	app.InitLogger(app.DefaultAppName, cfg.Logging, os.Stderr)

	code := strings.ToUpper(strings.TrimSpace(*province))
	if code == "" {
		code = cfg.Server.DefaultProvince
	}
	if !holidays.IsKnownProvince(code) {
		return fmt.Errorf("%q: %w", *province, holidays.ErrInvalidProvince)
	}

	var day time.Time
	if *date != "" {
		day, err = time.Parse(holidays.DateLayout, *date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", *date, err)
		}
		*year = day.Year()
	}
	if *year < app.MinYear || *year > app.MaxYear {
		return fmt.Errorf("%d: year must be between %d and %d", *year, app.MinYear, app.MaxYear)
	}

	wanted, err := holidays.ParseKinds(*kinds)
	if err != nil {
		return err
	}

	provider, store, err := app.NewProvider(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	view := holidays.NewView(provider, *year, code)
	if err := view.Refetch(ctx); err != nil {
		return err
	}

	if *date != "" {
		return printDate(out, view, day, code, *asJSON)
	}

	list := view.Holidays().OfKind(wanted...)
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"year":     *year,
			"province": code,
			"holidays": list,
		})
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "DATE\tOBSERVED\tKIND\tNAME\n")
	for _, h := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.Date, h.ObservedDate, h.Kind, h.NameEn)
	}
	return tw.Flush()
}

func printDate(out io.Writer, view *holidays.View, day time.Time, province string, asJSON bool) error {
	h, ok := view.HolidayForDate(day)
	if asJSON {
		resp := map[string]interface{}{
			"date":      holidays.FormatDate(day),
			"province":  province,
			"isHoliday": ok,
		}
		if ok {
			resp["holiday"] = h
		}
		return json.NewEncoder(out).Encode(resp)
	}
	if !ok {
		_, err := fmt.Fprintf(out, "%s is not a holiday in %s\n", holidays.FormatDate(day), holidays.ProvinceName(province))
		return err
	}
	_, err := fmt.Fprintf(out, "%s is %s (%s) in %s\n", holidays.FormatDate(day), h.NameEn, h.Kind, holidays.ProvinceName(province))
	return err
}
