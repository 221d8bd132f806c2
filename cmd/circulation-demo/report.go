package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/circulation/postgresengine"
	"github.com/openshelf/circulation-engine-go/features/query/memberloans"
	"github.com/openshelf/circulation-engine-go/features/query/overdueloans"
	"github.com/openshelf/circulation-engine-go/shell"
)

// printFinalReport runs the reporting queries once after the traffic stops:
// the overdue scan, one member's account, and the journal tail.
func printFinalReport(ctx context.Context, store postgresengine.CirculationStore, library Library) {
	ctx = circulation.WithEventualConsistency(ctx)

	printOverdueScan(ctx, store)
	printMemberAccount(ctx, store, library.MemberIDs[0])
	printJournalTail(ctx, store)
}

func printOverdueScan(ctx context.Context, store postgresengine.CirculationStore) {
	handler, err := overdueloans.NewQueryHandler(store)
	if err != nil {
		log.Printf("Overdue scan setup failed: %v", err)
		return
	}

	overdue, err := handler.Handle(ctx, overdueloans.BuildQuery(time.Now()))
	if err != nil {
		log.Printf("Overdue scan failed: %v", err)
		return
	}

	log.Printf("Overdue scan: %d loans overdue", overdue.Count)
	printReportJSON(overdue)
}

func printMemberAccount(ctx context.Context, store postgresengine.CirculationStore, memberID uuid.UUID) {
	handler, err := memberloans.NewQueryHandler(store)
	if err != nil {
		log.Printf("Member account setup failed: %v", err)
		return
	}

	account, err := handler.Handle(ctx, memberloans.BuildQuery(memberID, time.Now()))
	if err != nil {
		log.Printf("Member account query failed: %v", err)
		return
	}

	log.Printf("Member account %s: %d loans", memberID, account.Count)
	printReportJSON(account)
}

func printJournalTail(ctx context.Context, store postgresengine.CirculationStore) {
	entries, err := store.LoadJournalEntries(ctx, 10)
	if err != nil {
		log.Printf("Journal tail failed: %v", err)
		return
	}

	facts, err := shell.JournalFactsFrom(entries)
	if err != nil {
		log.Printf("Journal decode failed: %v", err)
		return
	}

	log.Printf("Journal tail: %d entries, newest first", len(entries))

	for i, entry := range entries {
		payload, marshalErr := jsoniter.ConfigDefault.Marshal(facts[i])
		if marshalErr != nil {
			log.Printf("  %-12s %s", entry.EntryType, entry.OccurredAt.Format(time.RFC3339))
			continue
		}

		log.Printf("  %-12s %s  %s", entry.EntryType, entry.OccurredAt.Format(time.RFC3339), payload)
	}
}

func printReportJSON(result any) {
	rendered, err := jsoniter.ConfigDefault.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Printf("Report rendering failed: %v", err)
		return
	}

	fmt.Println(string(rendered))
}
