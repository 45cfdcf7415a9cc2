package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fishcast/internal/catalog"
	"fishcast/internal/types"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the embedded catalog",
	}
	cmd.AddCommand(catalogSpotsCmd())
	cmd.AddCommand(catalogSpeciesCmd())
	cmd.AddCommand(catalogTechniquesCmd())
	return cmd
}

func catalogSpotsCmd() *cobra.Command {
	var region string
	cmd := &cobra.Command{
		Use:   "spots",
		Short: "List fishing spots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			spots := cat.Spots()
			if region != "" {
				filtered := spots[:0:0]
				for _, spot := range spots {
					if spot.Region == types.RegionID(region) {
						filtered = append(filtered, spot)
					}
				}
				spots = filtered
			}
			renderSpots(cmd.OutOrStdout(), spots)
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "only spots in this region")
	return cmd
}

func renderSpots(w io.Writer, spots []types.Spot) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("NAME"),
		headerStyle.Render("REGION"),
		headerStyle.Render("SHORE"),
		headerStyle.Render("SPECIES"))

	for _, spot := range spots {
		ids := make([]string, len(spot.PrimarySpecies))
		for i, id := range spot.PrimarySpecies {
			ids[i] = string(id)
		}
		name := spot.Name
		if spot.PelagicCorridor {
			name += " " + dimStyle.Render("(corridor)")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			spot.ID, name, string(spot.Region), string(spot.Shore), strings.Join(ids, ", "))
	}
}

func catalogSpeciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "species",
		Short: "List target species",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			renderSpecies(cmd.OutOrStdout(), cat.Species())
			return nil
		},
	}
}

func renderSpecies(w io.Writer, species []types.Species) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("NAME"),
		headerStyle.Render("TIER"),
		headerStyle.Render("MIN SIZE"),
		headerStyle.Render("BAN"))

	for _, sp := range species {
		minSize := "-"
		if sp.Legal.MinSizeCm > 0 {
			minSize = fmt.Sprintf("%.0f cm", sp.Legal.MinSizeCm)
		}
		ban := sp.Legal.BanNote
		if ban == "" {
			ban = "-"
		} else {
			ban = warnStyle.Render(ban)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", string(sp.ID), sp.Name, sp.Tier, minSize, ban)
	}
}

func catalogTechniquesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "techniques",
		Short: "List fishing techniques",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			renderTechniques(cmd.OutOrStdout(), cat.Techniques())
			return nil
		},
	}
}

func renderTechniques(w io.Writer, techniques []types.Technique) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("NAME"),
		headerStyle.Render("DESCRIPTION"))

	for _, tech := range techniques {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", string(tech.ID), tech.Name, dimStyle.Render(tech.Description))
	}
}
