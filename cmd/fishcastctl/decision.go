package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fishcast/internal/catalog"
	"fishcast/internal/decision"
	"fishcast/internal/reports"
	"fishcast/internal/solunar"
	"fishcast/internal/telemetry"
	"fishcast/internal/types"
	"fishcast/internal/weather"
)

func decisionCmd() *cobra.Command {
	var (
		offline bool
		date    string
		region  string
		trace   string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "decision",
		Short: "Compute the fishing decision for today",
		Long: `Run the full decision pipeline and print the result. Weather is
fetched live unless --offline is set; --date pins the run to another
day and implies --offline, since live weather only describes now.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			traceLevel, err := parseTraceFlag(trace)
			if err != nil {
				return err
			}

			svc, err := buildService(offline, date)
			if err != nil {
				return err
			}

			result, err := svc.Run(cmd.Context(), decision.RunOptions{
				Region:     types.RegionID(region),
				TraceLevel: traceLevel,
			})
			if err != nil {
				return fmt.Errorf("decision run failed: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Document)
			}

			renderDecision(cmd.OutOrStdout(), result.Document)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "skip live weather, use climatological fallback")
	cmd.Flags().StringVar(&date, "date", "", "run date YYYY-MM-DD (implies --offline)")
	cmd.Flags().StringVar(&region, "region", "", "restrict scoring to one region (avrupa, anadolu, city_belt)")
	cmd.Flags().StringVar(&trace, "trace", "none", "trace level (none, minimal, full)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw decision document")

	return cmd
}

func parseTraceFlag(trace string) (types.TraceLevel, error) {
	switch trace {
	case "", "none":
		return types.TraceNone, nil
	case "minimal":
		return types.TraceMinimal, nil
	case "full":
		return types.TraceFull, nil
	default:
		return types.TraceNone, fmt.Errorf("invalid --trace %q, want none, minimal, or full", trace)
	}
}

// buildService assembles a stateless pipeline: no archive, no metrics,
// full traces allowed because the output stays on the operator's screen.
func buildService(offline bool, date string) (*decision.Service, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	sol, err := solunar.NewProvider()
	if err != nil {
		return nil, fmt.Errorf("creating solunar provider: %w", err)
	}
	logger := slog.Default()

	svc := &decision.Service{
		Catalog:        cat,
		Solunar:        sol,
		Reports:        reports.NewStaticProvider(nil),
		Metrics:        telemetry.NoopPublisher{},
		Logger:         logger,
		AllowTraceFull: true,
	}

	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, sol.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
		}
		noon := day.Add(12 * time.Hour)
		svc.Clock = func() time.Time { return noon }
		offline = true
	}

	if offline {
		svc.Weather = weather.Offline{Clock: svc.Clock}
		return svc, nil
	}

	forecastURL := viper.GetString("weather.forecast_url")
	if forecastURL == "" {
		forecastURL = "https://api.open-meteo.com"
	}
	marineURL := viper.GetString("weather.marine_url")
	if marineURL == "" {
		marineURL = "https://marine-api.open-meteo.com"
	}

	upstream, err := weather.NewUpstreamClient(weather.UpstreamConfig{
		ForecastBaseURL: forecastURL,
		MarineBaseURL:   marineURL,
		Timeout:         10 * time.Second,
		UserAgent:       "FishCast/1.0 fishcastctl",
		RetryPolicy:     weather.DefaultRetryPolicy(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating weather client: %w", err)
	}
	svc.Weather = weather.NewProvider(upstream, weather.NewCache(30*time.Minute, 0), logger)
	return svc, nil
}

func renderDecision(w io.Writer, doc *types.DecisionDocument) {
	fmt.Fprintln(w, headerStyle.Render("FishCast "+doc.Date)+" "+dimStyle.Render("("+doc.Meta.Timezone+")"))
	fmt.Fprintln(w)

	renderDaySummary(w, &doc.DaySummary)

	if doc.NoGo.Active {
		fmt.Fprintln(w)
		fmt.Fprintln(w, noGoStyle.Render("NO-GO: denize çıkmayın"))
		for _, reason := range doc.NoGo.Reasons {
			fmt.Fprintln(w, "  "+reason)
		}
		for _, ex := range doc.NoGo.ShelteredExceptions {
			fmt.Fprintln(w, dimStyle.Render("  korunaklı istisna: "+ex.SpotName))
		}
	}

	if len(doc.BestWindows) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Best windows"))
		for _, win := range doc.BestWindows {
			fmt.Fprintf(w, "  %s  %s  %s\n",
				win.Start+" - "+win.End,
				styleScore(win.Score),
				dimStyle.Render(strings.Join(win.Reasons, ", ")))
		}
	}

	for i := range doc.Regions {
		renderRegion(w, &doc.Regions[i])
	}

	if len(doc.Spots) > 0 {
		fmt.Fprintln(w)
		renderSpotTable(w, doc.Spots)
	}

	if len(doc.DaySummary.DataIssues) > 0 {
		fmt.Fprintln(w)
		for _, issue := range doc.DaySummary.DataIssues {
			fmt.Fprintln(w, warnStyle.Render("! ")+issue)
		}
	}
}

func renderDaySummary(w io.Writer, day *types.DaySummary) {
	fmt.Fprintf(w, "Rüzgar   %s %d-%d km/h\n", day.WindNameTR, day.WindSpeedKmhMin, day.WindSpeedKmhMax)
	fmt.Fprintf(w, "Basınç   %.0f hPa (%s, %+.1f/3s)\n", day.PressureHPa, string(day.PressureTrend), day.PressureDelta3h)
	if day.SeaTempC != nil {
		fmt.Fprintf(w, "Deniz    %.1f °C\n", *day.SeaTempC)
	}
	fmt.Fprintf(w, "Veri     %s\n", string(day.DataQuality))
}

func renderRegion(w io.Writer, rec *types.RegionRecommendation) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(strings.ToUpper(string(rec.Region)))+"  "+rec.SpotName)
	for _, why := range rec.Why {
		fmt.Fprintln(w, dimStyle.Render("  "+why))
	}
	for _, target := range rec.Targets {
		fmt.Fprintf(w, "  %s  %s  %s\n", target.Name, styleScore(target.Score), dimStyle.Render(string(target.Mode)))
	}
	if len(rec.RecommendedTechniques) > 0 {
		ids := make([]string, len(rec.RecommendedTechniques))
		for i, id := range rec.RecommendedTechniques {
			ids[i] = string(id)
		}
		fmt.Fprintln(w, "  teknik: "+strings.Join(ids, ", "))
	}
}

func renderSpotTable(w io.Writer, spots []types.SpotScore) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("SPOT"),
		headerStyle.Render("REGION"),
		headerStyle.Render("SCORE"),
		headerStyle.Render("TOP SPECIES"))

	for i := range spots {
		spot := &spots[i]
		score := styleScore(spot.OverallScore)
		if spot.NoGo {
			score = noGoStyle.Render("NO-GO")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spot.SpotName, string(spot.Region), score, topSpecies(spot))
	}
}

// topSpecies formats the best species of a spot, ties broken by ID for
// stable output.
func topSpecies(spot *types.SpotScore) string {
	type entry struct {
		id    types.SpeciesID
		score int
	}
	entries := make([]entry, 0, len(spot.Species))
	for id, res := range spot.Species {
		entries = append(entries, entry{id: id, score: res.Score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].id < entries[j].id
	})
	if len(entries) > 3 {
		entries = entries[:3]
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %d", string(e.id), e.score)
	}
	return strings.Join(parts, ", ")
}
