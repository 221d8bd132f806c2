package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openshelf/circulation-engine-go/features/command/paymemberfine"
)

func newPayCmd(a *app) *cobra.Command {
	var fineFlag, amountFlag, staffFlag string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Take a payment against a member's fine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fineID, err := parseID("fine id", fineFlag)
			if err != nil {
				return err
			}

			amount, err := decimal.NewFromString(amountFlag)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amountFlag, err)
			}

			staffID, err := parseID("staff id", staffFlag)
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

			handler := paymemberfine.NewCommandHandler(store)

			receipt, result, err := handler.Handle(ctx, paymemberfine.BuildCommand(fineID, amount, staffID, time.Now()))
			if err != nil {
				return err
			}

			if result.Idempotent {
				fmt.Fprintln(os.Stderr, "fine was already settled; no changes made")
			}

			return printJSON(receipt)
		},
	}

	cmd.Flags().StringVar(&fineFlag, "fine", "", "fine id (uuid)")
	cmd.Flags().StringVar(&amountFlag, "amount", "", "payment amount, e.g. 2.50")
	cmd.Flags().StringVar(&staffFlag, "staff", "", "staff member taking the payment (uuid)")
	_ = cmd.MarkFlagRequired("fine")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("staff")

	return cmd
}
