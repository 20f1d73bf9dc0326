package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"solardash/internal/config"
	"solardash/internal/discovery"
	"solardash/internal/models"
	"solardash/internal/serp"
	"solardash/internal/tracking"
	"solardash/internal/validation"
)

// bootstrapCmd records keyword rankings for an area
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Discover keywords for an area and record the business's rankings",
	Long: `Discover keywords for an area, look up where the business website ranks
for each and store the observations.

The website comes from the stored business config, or OPERATOR_DOMAIN.`,
	RunE: runBootstrap,
}

// trackCmd runs competitor tracking
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Discover and rank competitors for the configured service areas",
	Long: `Run a competitor tracking pass for every service area in the stored
business config, or only for --area.`,
	RunE: runTrack,
}

func init() {
	bootstrapCmd.Flags().StringVar(&areaFlag, "area", "", `service area, e.g. "Phoenix, AZ"`)
	bootstrapCmd.Flags().IntVar(&limitFlag, "limit", discovery.DefaultLimit, "number of keywords to discover")
	_ = bootstrapCmd.MarkFlagRequired("area")

	trackCmd.Flags().StringVar(&areaFlag, "area", "", "track only this service area")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	area := validation.NormalizeArea(areaFlag)
	if ok, msg := validation.ValidateArea(area); !ok {
		return fmt.Errorf("invalid --area: %s", msg)
	}

	cfg := config.Load()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	domain := cfg.OperatorDomain
	bc, err := database.GetCurrentBusinessConfig(ctx)
	switch {
	case err == nil && bc.Website != "":
		domain = bc.Website
	case err != nil && !errors.Is(err, models.ErrNoBusinessConfig):
		return err
	}
	domain = validation.NormalizeDomain(domain)
	if domain == "" {
		return errors.New("no business website configured; set OPERATOR_DOMAIN or save a business config")
	}

	checker := discovery.NewChecker(serp.New(cfg, nil), cfg.SERPDelay, nil)
	result, err := checker.Bootstrap(ctx, database, area, domain, limitFlag)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()
	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	bc, err := database.GetCurrentBusinessConfig(ctx)
	if err != nil {
		return err
	}
	if areaFlag != "" {
		bc, err = onlyArea(bc, areaFlag)
		if err != nil {
			return err
		}
	}

	tracker := tracking.New(serp.New(cfg, nil), database, tracking.Options{
		Delay:          cfg.SERPDelay,
		OperatorDomain: cfg.OperatorDomain,
	})
	result, err := tracker.TrackAll(ctx, bc)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

// onlyArea narrows bc to one of its service areas.
func onlyArea(bc *models.BusinessConfig, area string) (*models.BusinessConfig, error) {
	area = validation.NormalizeArea(area)
	for _, a := range bc.ServiceAreas {
		if a == area {
			narrowed := *bc
			narrowed.ServiceAreas = []string{a}
			return &narrowed, nil
		}
	}
	return nil, fmt.Errorf("%q is not a configured service area", area)
}
