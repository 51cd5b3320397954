package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/draftedge/prospect-rank/internal/service"
)

var rankParams service.QueryParams

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Compute and print the current ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		page, err := env.Service.Query(cmd.Context(), rankParams)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tNAME\tPOS\tORG\tLEVEL\tGRADE\tPERF\tTREND\tAGE\tTOTAL\tSCORE\tTIER\tDATA")
		for _, r := range page.Results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.1f\t%+.2f\t%+.2f\t%+.2f\t%+.2f\t%.2f\t%d\t%s\n",
				r.Rank, r.Name, r.Position, r.Organization, r.Level,
				r.ScoutGrade, r.PerformanceModifier, r.TrendAdjustment,
				r.AgeAdjustment, r.TotalAdjustment, r.CompositeScore,
				r.Tier, r.DataTier)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Printf("\n%d of %d prospects (page %d/%d), snapshot %s generated %s\n",
			len(page.Results), page.TotalCount, page.Page, page.TotalPages,
			page.SnapshotID, page.GeneratedAt.Format("2006-01-02 15:04:05"))

		return nil
	},
}

func init() {
	rankCmd.Flags().IntVar(&rankParams.Page, "page", 1, "page number")
	rankCmd.Flags().IntVar(&rankParams.PageSize, "page-size", 25, "page size (1-100)")
	rankCmd.Flags().StringVar(&rankParams.Position, "position", "", "filter by position")
	rankCmd.Flags().StringVar(&rankParams.Organization, "organization", "", "filter by organization")
	rankCmd.Flags().StringVar(&rankParams.Level, "level", "", "filter by level")
	rankCmd.Flags().StringVar(&rankParams.Sort, "sort", "rank", "sort key (rank, scout_grade, age, name)")
	rankCmd.Flags().IntVar(&rankParams.Limit, "limit", 0, "cap on filtered results")
	rootCmd.AddCommand(rankCmd)
}
