package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/state-econ/internal/acs"
	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/logger"
	"github.com/pfrederiksen/state-econ/internal/normalize"
	"github.com/pfrederiksen/state-econ/internal/scraper"
)

// metadataTTL bounds how long one invocation reuses a year's variables.json.
const metadataTTL = time.Hour

func (a *app) newScraper() *scraper.Scraper {
	return scraper.New(a.client,
		scraper.WithStateCodesURL(a.cfg.StateCodesURL),
		scraper.WithAirportsURL(a.cfg.AirportsURL),
	)
}

func newFREDCmd(a *app) *cobra.Command {
	var (
		url       string
		variable  string
		withCodes bool
	)

	cmd := &cobra.Command{
		Use:   "fred",
		Short: "Extract a FRED release table in long form",
		Long: `Fetch a FRED release table (e.g. https://fred.stlouisfed.org/release/tables?rid=112)
and reshape it to one row per state per year for the current and preceding period.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sc := a.newScraper()

			series, err := sc.FetchFRED(ctx, url, variable)
			if err != nil {
				return fmt.Errorf("fetching FRED table: %w", err)
			}
			a.log.Info("extracted FRED series", logger.Fields{
				"variable":     series.Variable,
				"unit":         series.Unit,
				"observations": len(series.Observations),
			})

			if !withCodes {
				return a.emit(ctx, series.Dataset())
			}

			codes, err := sc.FetchStateCodes(ctx)
			if err != nil {
				return fmt.Errorf("fetching state codes: %w", err)
			}
			coded, err := normalize.AttachStateCodes(series, codes)
			if err != nil {
				return err
			}
			return a.emit(ctx, coded.Dataset())
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "FRED release table URL (required)")
	cmd.Flags().StringVar(&variable, "variable", "", "Name of the variable the table reports (required)")
	cmd.Flags().BoolVar(&withCodes, "with-codes", false, "Join FIPS and USPS codes from the Census state list")
	cmd.MarkFlagRequired("url")
	cmd.MarkFlagRequired("variable")

	return cmd
}

func newACSCmd(a *app) *cobra.Command {
	var (
		year   int
		years  []int
		state  string
		apiKey string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "acs",
		Short: "Extract ACS 1-year state estimates",
		Long: `Query the Census ACS 1-year API for the default economic and demographic
variables. By default the result is normalized to one profile per state and year
with unemployment and foreign-born shares; --raw keeps the API's columns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(years) == 0 {
				if year == 0 {
					return fmt.Errorf("--year or --years is required")
				}
				years = []int{year}
			}
			if apiKey == "" {
				apiKey = a.cfg.CensusAPIKey
			}

			client := acs.NewClient(a.client, apiKey,
				acs.WithBaseURL(a.cfg.CensusBaseURL),
				acs.WithLogger(a.log),
				acs.WithMetadataCache(metadataTTL),
			)
			tables, err := client.FetchYears(ctx, acs.Query{State: state}, years)
			if err != nil {
				return fmt.Errorf("fetching ACS data: %w", err)
			}

			if raw {
				d, err := mergeTables(tables)
				if err != nil {
					return err
				}
				return a.emit(ctx, d)
			}

			var profiles []normalize.StateProfile
			for _, t := range tables {
				p, err := normalize.ACS(t)
				if err != nil {
					return fmt.Errorf("normalizing %d: %w", t.Year, err)
				}
				profiles = append(profiles, p...)
			}
			return a.emit(ctx, normalize.ProfileDataset(profiles, tables[0].Source))
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Survey year (e.g. 2023)")
	cmd.Flags().IntSliceVar(&years, "years", nil, "Several survey years, fetched concurrently (e.g. 2021,2022,2023)")
	cmd.Flags().StringVar(&state, "state", "", "Two-digit FIPS code of a single state (default: all states)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Census API key (env: CENSUS_API_KEY)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Skip normalization and output the API columns")
	cmd.MarkFlagsMutuallyExclusive("year", "years")

	return cmd
}

// mergeTables stacks per-year tables that share the same columns.
func mergeTables(tables []*acs.Table) (*dataset.Dataset, error) {
	merged := tables[0].Dataset()
	for _, t := range tables[1:] {
		d := t.Dataset()
		if len(d.Columns) != len(merged.Columns) {
			return nil, fmt.Errorf("ACS %d has %d columns, %d has %d", t.Year, len(d.Columns), tables[0].Year, len(merged.Columns))
		}
		for i := range d.Columns {
			if d.Columns[i] != merged.Columns[i] {
				return nil, fmt.Errorf("ACS %d column %d is %q, %d has %q", t.Year, i, d.Columns[i], tables[0].Year, merged.Columns[i])
			}
		}
		merged.Rows = append(merged.Rows, d.Rows...)
	}
	return merged, nil
}

func newStatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "Extract the Census state name, FIPS and USPS code list",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.newScraper()
			codes, err := sc.FetchStateCodes(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching state codes: %w", err)
			}
			return a.emit(cmd.Context(), codes.Dataset(sc.StateCodesURL()))
		},
	}
}

func newAirportsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "airports",
		Short: "Extract the BTS airport list split into name, city and state",
		RunE: func(cmd *cobra.Command, args []string) error {
			airports, err := a.newScraper().FetchAirports(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching airports: %w", err)
			}
			return a.emit(cmd.Context(), airports.Dataset())
		},
	}
}
