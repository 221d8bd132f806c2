package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/circulation-engine-go/features/command/issuebookcopy"
	"github.com/openshelf/circulation-engine-go/features/command/renewloan"
	"github.com/openshelf/circulation-engine-go/features/command/returnbookcopy"
)

func newIssueCmd(a *app) *cobra.Command {
	var memberFlag, bookFlag, staffFlag string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a book copy to a member",
		RunE: func(cmd *cobra.Command, _ []string) error {
			memberID, err := parseID("member id", memberFlag)
			if err != nil {
				return err
			}

			bookID, err := parseID("book id", bookFlag)
			if err != nil {
				return err
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

			handler := issuebookcopy.NewCommandHandler(store)

			receipt, _, err := handler.Handle(ctx, issuebookcopy.BuildCommand(memberID, bookID, staffID, time.Now()))
			if err != nil {
				return err
			}

			return printJSON(receipt)
		},
	}

	cmd.Flags().StringVar(&memberFlag, "member", "", "member id (uuid)")
	cmd.Flags().StringVar(&bookFlag, "book", "", "book id (uuid)")
	cmd.Flags().StringVar(&staffFlag, "staff", "", "staff member recorded on the loan (uuid)")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("staff")

	return cmd
}

func newReturnCmd(a *app) *cobra.Command {
	var loanFlag, bookFlag, memberFlag, staffFlag string

	cmd := &cobra.Command{
		Use:   "return",
		Short: "Return a book copy and settle any overdue fine",
		Long: `Return closes an open loan. The loan is addressed either directly with
--loan, or with the --book and --member pair when the loan id is not at hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if loanFlag == "" && (bookFlag == "" || memberFlag == "") {
				return errors.New("either --loan or both --book and --member must be given")
			}

			staffID, err := parseID("staff id", staffFlag)
			if err != nil {
				return err
			}

			var command returnbookcopy.Command

			if loanFlag != "" {
				loanID, parseErr := parseID("loan id", loanFlag)
				if parseErr != nil {
					return parseErr
				}

				command = returnbookcopy.BuildCommandForLoan(loanID, staffID, time.Now())
			} else {
				bookID, parseErr := parseID("book id", bookFlag)
				if parseErr != nil {
					return parseErr
				}

				memberID, parseErr := parseID("member id", memberFlag)
				if parseErr != nil {
					return parseErr
				}

				command = returnbookcopy.BuildCommandForBookAndMember(bookID, memberID, staffID, time.Now())
			}

			ctx, cancel := a.operationContext(cmd)
			defer cancel()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			handler := returnbookcopy.NewCommandHandler(store)

			receipt, result, err := handler.Handle(ctx, command)
			if err != nil {
				return err
			}

			if result.Idempotent {
				fmt.Fprintln(os.Stderr, "loan was already closed; no changes made")
			}

			return printJSON(receipt)
		},
	}

	cmd.Flags().StringVar(&loanFlag, "loan", "", "loan id (uuid)")
	cmd.Flags().StringVar(&bookFlag, "book", "", "book id, used with --member when no loan id is given")
	cmd.Flags().StringVar(&memberFlag, "member", "", "member id, used with --book when no loan id is given")
	cmd.Flags().StringVar(&staffFlag, "staff", "", "staff member recording the return (uuid)")
	_ = cmd.MarkFlagRequired("staff")

	return cmd
}

func newRenewCmd(a *app) *cobra.Command {
	var loanFlag, staffFlag string

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Renew an open loan for another lending period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loanID, err := parseID("loan id", loanFlag)
			if err != nil {
				return err
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

			handler := renewloan.NewCommandHandler(store)

			receipt, _, err := handler.Handle(ctx, renewloan.BuildCommand(loanID, staffID, time.Now()))
			if err != nil {
				return err
			}

			return printJSON(receipt)
		},
	}

	cmd.Flags().StringVar(&loanFlag, "loan", "", "loan id (uuid)")
	cmd.Flags().StringVar(&staffFlag, "staff", "", "staff member recording the renewal (uuid)")
	_ = cmd.MarkFlagRequired("loan")
	_ = cmd.MarkFlagRequired("staff")

	return cmd
}
