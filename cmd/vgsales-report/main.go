// Command vgsales-report loads the sales dataset once, applies filters given
// on the command line and prints the dashboard summary. With -export it also
// writes the filtered table as CSV or XLSX.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/wilbersoares/projeto-fatec/internal/config"
	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	"github.com/wilbersoares/projeto-fatec/internal/dataset"
	"github.com/wilbersoares/projeto-fatec/internal/exporter"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
	"github.com/wilbersoares/projeto-fatec/internal/services"
	"github.com/wilbersoares/projeto-fatec/internal/session"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts"
	"github.com/wilbersoares/projeto-fatec/pkg/contracts/domain"
)

type options struct {
	dataDir   string
	yearMin   int
	yearMax   int
	platforms string
	genres    string
	peakYear  int
	publisher string
	export    string
	format    string
	asJSON    bool
	top       int
	verbose   bool
	version   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("vgsales-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dataDir, "data-dir", "", "directory holding the dataset file (skips the download)")
	fs.IntVar(&opts.yearMin, "year-min", 0, "first release year to include")
	fs.IntVar(&opts.yearMax, "year-max", 0, "last release year to include")
	fs.StringVar(&opts.platforms, "platforms", "", "comma separated platforms to keep (default all)")
	fs.StringVar(&opts.genres, "genres", "", "comma separated genres to keep (default all)")
	fs.IntVar(&opts.peakYear, "peak-year", 0, "focus the view on a single year")
	fs.StringVar(&opts.publisher, "publisher", "", "publisher to drill down into")
	fs.StringVar(&opts.export, "export", "", "write the filtered table to this file")
	fs.StringVar(&opts.format, "format", "csv", "export format: csv or xlsx")
	fs.BoolVar(&opts.asJSON, "json", false, "print the full view model as JSON")
	fs.IntVar(&opts.top, "top", 5, "rows printed per ranking")
	fs.BoolVar(&opts.verbose, "v", false, "log at debug level")
	fs.BoolVar(&opts.version, "version", false, "print build information and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.top <= 0 {
		return opts, fmt.Errorf("-top must be positive")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		_, err := fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.dataDir != "" {
		cfg.Dataset.LocalDir = opts.dataDir
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := infrastructure.NewJSONLogger(stderr, &slog.HandlerOptions{Level: level})
	ctx = infrastructure.EnsureTraceID(ctx)

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	renderer, err := svc.Renderer(ctx)
	if err != nil {
		return fmt.Errorf("dataset unavailable: %w", err)
	}

	state, err := buildState(renderer.Controller(), opts)
	if err != nil {
		return err
	}
	viewOpts := dashboard.Options{Publisher: opts.publisher}

	var view *dashboard.ViewModel
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view, err = svc.Render(gctx, &state, viewOpts)
		return err
	})
	if opts.export != "" {
		g.Go(func() error {
			return exportTable(gctx, renderer, state, opts, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return printSummary(stdout, view, opts.top)
}

func newService(cfg *config.Config, logger *slog.Logger) (*services.DashboardService, error) {
	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	var source dataset.Source
	if paths.LocalDir != "" {
		source = dataset.LocalSource{Dir: paths.LocalDir}
	} else {
		source = dataset.NewKaggleSource(dataset.KaggleConfig{
			BaseURL:         cfg.Dataset.BaseURL,
			CacheDir:        paths.CacheDir,
			FileName:        cfg.Dataset.FileName,
			CredentialsFile: paths.CredentialsFile,
			Timeout:         cfg.Dataset.HTTPTimeout,
		}, nil, logger)
	}

	loader := dataset.NewLoader(source, dataset.Reader{FileName: cfg.Dataset.FileName},
		cfg.Dataset.Identifier, logger, nil)
	return services.NewDashboardService(loader, session.NewStore(0, logger, nil),
		dashboard.LimitsFrom(cfg.Dashboard), logger, nil), nil
}

// buildState narrows the default state with the filter flags.
func buildState(ctrl *filter.Controller, opts options) (filter.State, error) {
	state := ctrl.Default()

	if opts.yearMin != 0 || opts.yearMax != 0 {
		lo, hi := state.Years.Min, state.Years.Max
		if opts.yearMin != 0 {
			lo = opts.yearMin
		}
		if opts.yearMax != 0 {
			hi = opts.yearMax
		}
		var err error
		if state, err = ctrl.SetYearRange(state, lo, hi); err != nil {
			return state, err
		}
	}

	for dim, list := range map[domain.Dimension]string{
		domain.DimensionPlatform: opts.platforms,
		domain.DimensionGenre:    opts.genres,
	} {
		if list == "" {
			continue
		}
		var err error
		if state, err = ctrl.SetSelection(state, dim, splitList(list)); err != nil {
			return state, err
		}
	}

	if opts.peakYear != 0 {
		return ctrl.ApplyPeakYear(state, opts.peakYear)
	}
	return state, nil
}

func exportTable(ctx context.Context, r *dashboard.Renderer, state filter.State, opts options, logger *slog.Logger) error {
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	ds, err := r.Filtered(state)
	if errors.Is(err, filter.ErrNoData) {
		logger.WarnContext(ctx, "nothing to export", slog.String("path", opts.export))
		return nil
	}
	if err != nil {
		return err
	}
	return exporter.New(logger, nil).ExportFile(ctx, opts.export, format, ds)
}

func printSummary(w io.Writer, view *dashboard.ViewModel, top int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", contracts.GetVersionString())
	fmt.Fprintf(tw, "Anos\t%d-%d\n", view.State.Years.Min, view.State.Years.Max)
	if view.State.PeakYear != nil {
		fmt.Fprintf(tw, "Ano em foco\t%d\n", *view.State.PeakYear)
	}
	fmt.Fprintf(tw, "Consoles\t%d de %d\n", len(view.State.Platforms), len(view.Universe.Platforms))
	fmt.Fprintf(tw, "Generos\t%d de %d\n", len(view.State.Genres), len(view.Universe.Genres))

	if view.NoData {
		fmt.Fprintf(tw, "\n%s\n", view.Warning)
		return tw.Flush()
	}

	s := view.Sections
	m := s.Metrics
	fmt.Fprintf(tw, "\nRegistros\t%d\n", m.Records)
	fmt.Fprintf(tw, "Vendas globais (mi)\t%.2f\n", m.TotalGlobal)
	fmt.Fprintf(tw, "Media / mediana\t%.2f / %.2f\n", m.MeanGlobal, m.MedianGlobal)
	fmt.Fprintf(tw, "Jogos / editoras\t%d / %d\n", m.UniqueGames, m.UniquePublishers)

	printTotals(tw, "Generos", s.GenreTotals, top)
	printTotals(tw, "Consoles", s.PlatformTotals, top)
	printTotals(tw, "Editoras", s.PublisherTotals, top)

	fmt.Fprintf(tw, "\nRegiao\tVendas\n")
	for _, r := range s.Regional {
		fmt.Fprintf(tw, "%s\t%.2f\n", r.Label, r.Value)
	}

	fmt.Fprintf(tw, "\nTop jogos\tConsole\tAno\tVendas\n")
	for i, g := range s.TopGames.Games {
		if i == top {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", g.Name, g.Platform, g.Year, g.SalesGlobal)
	}
	if s.TopGames.Info != "" {
		fmt.Fprintln(tw, s.TopGames.Info)
	}

	if d := s.Publisher.Drilldown; d != nil {
		fmt.Fprintf(tw, "\nEditora\t%s\n", view.Options.Publisher)
		printTotals(tw, "Consoles da editora", d.Platforms, top)
	} else if s.Publisher.Info != "" && view.Options.Publisher != "" {
		fmt.Fprintf(tw, "\n%s\n", s.Publisher.Info)
	}

	return tw.Flush()
}

func printTotals(w io.Writer, title string, totals []domain.CategoryTotal, top int) {
	fmt.Fprintf(w, "\n%s\tVendas\n", title)
	for i, t := range totals {
		if i == top {
			break
		}
		fmt.Fprintf(w, "%s\t%.2f\n", t.Category, t.Value)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
