package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/core"
	"github.com/openshelf/circulation-engine-go/shell"
)

type journalLine struct {
	EntryType  string           `json:"entryType"`
	OccurredAt time.Time        `json:"occurredAt"`
	Fact       core.JournalFact `json:"fact"`
}

func newJournalCmd(a *app) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the circulation journal",
	}

	journalCmd.AddCommand(newJournalTailCmd(a))

	return journalCmd
}

func newJournalTailCmd(a *app) *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent journal entries, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.operationContext(cmd)
			defer cancel()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := store.LoadJournalEntries(circulation.WithEventualConsistency(ctx), length)
			if err != nil {
				return err
			}

			facts, err := shell.JournalFactsFrom(entries)
			if err != nil {
				return err
			}

			lines := make([]journalLine, 0, len(entries))
			for i, entry := range entries {
				lines = append(lines, journalLine{
					EntryType:  entry.EntryType,
					OccurredAt: entry.OccurredAt,
					Fact:       facts[i],
				})
			}

			return printJSON(lines)
		},
	}

	cmd.Flags().IntVar(&length, "n", 20, "number of entries to show")

	return cmd
}
