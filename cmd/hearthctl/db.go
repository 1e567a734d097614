package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := location()
			if err != nil {
				return err
			}
			b, db, err := openPostgres(cmd.Context(), newLogger(), loc)
			if err != nil {
				return err
			}
			defer b.close()
			if err := db.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	rootCmd.AddCommand(migrateCmd)

	var household int64
	var file string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load recipes, inventory, places and meals from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := LoadFixturesFile(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			b, hid, err := openHousehold(ctx, household, "")
			if err != nil {
				return err
			}
			defer b.close()
			n, err := fx.Apply(ctx, b.svc, hid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded household %d: %d recipes, %d inventory items, %d places, %d meals\n",
				hid, n.Recipes, n.Inventory, n.Locations, n.Meals)
			return nil
		},
	}
	seedCmd.Flags().Int64Var(&household, "household", 0, "Household ID (required)")
	seedCmd.Flags().StringVarP(&file, "file", "f", "", "Fixtures file (required)")
	_ = seedCmd.MarkFlagRequired("household")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
