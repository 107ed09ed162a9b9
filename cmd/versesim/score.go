package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/talgya/adastrea-verse/internal/verse"
	"github.com/talgya/adastrea-verse/internal/way"
)

func newScoreCmd() *cobra.Command {
	var contentPath string

	cmd := &cobra.Command{
		Use:   "score <way-id> [feat-id...]",
		Short: "Show how a Way regards feats",
		Long: "Prints each feat's reputation gain with the Way. With feat IDs, also prints\n" +
			"the combined score and tier a player holding exactly those feats would have.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(contentPath)
			if err != nil {
				return err
			}
			w, ok := cat.Way(args[0])
			if !ok {
				return fmt.Errorf("unknown way %q, known: %v", args[0], cat.WayIDs())
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FEAT\tRARITY\tALIGNMENT\tGAIN")
			for _, f := range cat.Feats {
				primary := "-"
				if p, ok := f.PrimaryAlignment(); ok {
					primary = p.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", f.ID, f.Rarity, primary, f.ReputationGain(w.CorePrecepts))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(args) == 1 {
				return nil
			}
			var held []*way.Feat
			for _, id := range args[1:] {
				f, ok := cat.Feat(id)
				if !ok {
					return fmt.Errorf("unknown feat %q", id)
				}
				held = append(held, f)
			}
			score := verse.Score(held, w)
			fmt.Printf("\n%s: score %.1f (%s)\n", w.Name, score, verse.TierFor(score))
			return nil
		},
	}

	cmd.Flags().StringVar(&contentPath, "content", "", "Content file (default: embedded catalog)")

	return cmd
}
