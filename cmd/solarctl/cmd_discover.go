package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"solardash/internal/discovery"
	"solardash/internal/validation"
)

var discoverJSON bool

// discoverCmd prints keyword suggestions for an area
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Suggest keywords for a service area",
	Long: `Suggest keywords for a service area, scored by opportunity.

Example:
  solarctl discover --area "Phoenix, AZ" --limit 5`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&areaFlag, "area", "", `service area, e.g. "Phoenix, AZ"`)
	discoverCmd.Flags().IntVar(&limitFlag, "limit", discovery.DefaultLimit, "maximum number of suggestions")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "print JSON instead of a table")
	_ = discoverCmd.MarkFlagRequired("area")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	area := validation.NormalizeArea(areaFlag)
	if ok, msg := validation.ValidateArea(area); !ok {
		return fmt.Errorf("invalid --area: %s", msg)
	}
	if limitFlag <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	suggestions := discovery.Discover(area, limitFlag)
	if discoverJSON {
		return writeJSON(cmd.OutOrStdout(), suggestions)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tCATEGORY\tVOLUME\tCOMPETITORS\tOPPORTUNITY")
	for _, s := range suggestions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", s.Keyword, s.Category, s.EstimatedVolume, s.CompetitorCount, s.Opportunity)
	}
	return tw.Flush()
}
