package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCmd(a *app) *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the circulation database schema",
	}

	schemaCmd.AddCommand(newSchemaInitCmd(a))

	return schemaCmd
}

func newSchemaInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the schema and seed the default loan policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.operationContext(cmd)
			defer cancel()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.CreateSchema(ctx); err != nil {
				return fmt.Errorf("migrating schema: %w", err)
			}

			if err := store.SeedDefaultPolicies(ctx); err != nil {
				return fmt.Errorf("seeding policies: %w", err)
			}

			fmt.Println("schema ready")

			return nil
		},
	}
}
