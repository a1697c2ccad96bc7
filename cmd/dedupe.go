package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/orbitnotes/orbit-cli/internal/contact"
	"github.com/orbitnotes/orbit-cli/internal/identity"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and merge duplicate contacts",
	Long:  "Commands for scanning the contact corpus for duplicate groups and merging them into single records.",
}

// -- dedupe scan --

var dedupeScanJSON bool

var dedupeScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the corpus for duplicate groups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		contacts, err := st.ListContacts(ctx, cfg.Owner.ID)
		if err != nil {
			return eris.Wrap(err, "dedupe scan")
		}

		groups := identity.FindDuplicates(contacts)
		if cfg.Match.MaxGroups > 0 && len(groups) > cfg.Match.MaxGroups {
			groups = groups[:cfg.Match.MaxGroups]
		}

		if len(groups) == 0 {
			fmt.Fprintln(os.Stderr, "No duplicate groups found.")
			return nil
		}

		if dedupeScanJSON {
			return json.NewEncoder(os.Stdout).Encode(groups)
		}

		names := make(map[string]string, len(contacts))
		for i := range contacts {
			names[contacts[i].ID] = contacts[i].Name
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONFIDENCE\tFIELD\tMEMBERS")
		for _, g := range groups {
			members := ""
			for i, id := range g.ContactIDs {
				if i > 0 {
					members += ", "
				}
				members += fmt.Sprintf("%s (%s)", names[id], id)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", g.Confidence, g.Field, members)
		}
		return w.Flush()
	},
}

// -- dedupe merge --

var dedupeMergeOverrides []string

var dedupeMergeCmd = &cobra.Command{
	Use:   "merge <winner-id> <loser-id>",
	Short: "Merge two duplicate contacts into one",
	Long:  "Merges the loser contact into the winner: winner fields stand, gaps fill from the loser, and --take overrides pick loser values field by field. The loser is deleted.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		winnerID, loserID := args[0], args[1]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		policy, err := loadMergePolicy()
		if err != nil {
			return err
		}

		overrides := make(map[string]string, len(dedupeMergeOverrides))
		for _, field := range dedupeMergeOverrides {
			overrides[field] = loserID
		}

		merged, err := contact.NewMerger(st, policy).Merge(ctx, winnerID, loserID, overrides)
		if err != nil {
			return eris.Wrap(err, "dedupe merge")
		}

		zap.L().Info("merge complete",
			zap.String("winner_id", winnerID),
			zap.String("loser_id", loserID),
		)
		return json.NewEncoder(os.Stdout).Encode(merged)
	},
}

// -- dedupe conflicts --

var dedupeConflictsCmd = &cobra.Command{
	Use:   "conflicts <winner-id> <loser-id>",
	Short: "List fields that differ between two contacts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		winner, err := st.GetContact(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "dedupe conflicts")
		}
		loser, err := st.GetContact(ctx, args[1])
		if err != nil {
			return eris.Wrap(err, "dedupe conflicts")
		}

		conflicts := contact.Conflicts(winner, loser)
		if len(conflicts) == 0 {
			fmt.Fprintln(os.Stderr, "No conflicting fields.")
			return nil
		}
		return json.NewEncoder(os.Stdout).Encode(conflicts)
	},
}

func init() {
	dedupeScanCmd.Flags().BoolVar(&dedupeScanJSON, "json", false, "emit groups as JSON")
	dedupeMergeCmd.Flags().StringSliceVar(&dedupeMergeOverrides, "take", nil, "field to take from the loser instead of the winner (repeatable)")
	dedupeCmd.AddCommand(dedupeScanCmd)
	dedupeCmd.AddCommand(dedupeMergeCmd)
	dedupeCmd.AddCommand(dedupeConflictsCmd)
	rootCmd.AddCommand(dedupeCmd)
}
