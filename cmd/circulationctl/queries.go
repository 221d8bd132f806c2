package main

import (
	"github.com/spf13/cobra"

	"github.com/openshelf/circulation-engine-go/circulation"
	"github.com/openshelf/circulation-engine-go/features/query/memberloans"
	"github.com/openshelf/circulation-engine-go/features/query/overdueloans"
)

func newOverdueCmd(a *app) *cobra.Command {
	var asOfFlag string

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List overdue loans with estimated fines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf, err := parseAsOf(asOfFlag)
			if err != nil {
				return err
			}

			ctx, cancel := a.operationContext(cmd)
			defer cancel()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			handler, err := overdueloans.NewQueryHandler(store)
			if err != nil {
				return err
			}

			// Reports tolerate replica lag
			result, err := handler.Handle(circulation.WithEventualConsistency(ctx), overdueloans.BuildQuery(asOf))
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "reference date for the scan (YYYY-MM-DD or RFC 3339, default now)")

	return cmd
}

func newMemberLoansCmd(a *app) *cobra.Command {
	var memberFlag, asOfFlag string

	var openOnly bool

	cmd := &cobra.Command{
		Use:   "member-loans",
		Short: "Show a member's loan account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			memberID, err := parseID("member id", memberFlag)
			if err != nil {
				return err
			}

			asOf, err := parseAsOf(asOfFlag)
			if err != nil {
				return err
			}

			query := memberloans.BuildQuery(memberID, asOf)
			if openOnly {
				query = memberloans.BuildOpenLoansQuery(memberID, asOf)
			}

			ctx, cancel := a.operationContext(cmd)
			defer cancel()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			handler, err := memberloans.NewQueryHandler(store)
			if err != nil {
				return err
			}

			result, err := handler.Handle(circulation.WithEventualConsistency(ctx), query)
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&memberFlag, "member", "", "member id (uuid)")
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "reference date for overdue classification (default now)")
	cmd.Flags().BoolVar(&openOnly, "open", false, "show only loans that are still out")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}
