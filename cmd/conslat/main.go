// Command conslat is a thin CLI adapter over the arules and dcverify
// cores: it registers flags, loads the input file, calls Execute, and
// prints results. All interesting logic lives in the library packages;
// this binary only wires flags to Option calls.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/avldata/conslat/arules"
	"github.com/avldata/conslat/column"
	"github.com/avldata/conslat/dcverify"
	"github.com/avldata/conslat/ingest"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("conslat: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "conslat",
		Short: "conslat mines association rules and verifies denial constraints over tabular input",
	}
	root.AddCommand(newARulesCmd())
	root.AddCommand(newDCVerifyCmd())
	return root
}

func newARulesCmd() *cobra.Command {
	var (
		inputPath string
		minsup    float64
		minconf   float64
	)

	cmd := &cobra.Command{
		Use:   "arules",
		Short: "mine frequent itemsets and association rules from transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("conslat: opening input: %w", err)
			}
			defer f.Close()

			transactions, err := ingest.ReadTransactions(f)
			if err != nil {
				return err
			}

			m := arules.NewMiner()
			if err := m.LoadData(transactions); err != nil {
				return err
			}
			if err := m.Execute(context.Background(), minsup, minconf); err != nil {
				return err
			}

			for _, r := range m.Rules() {
				fmt.Fprintln(cmd.OutOrStdout(), m.Render(r))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a CSV file of transactions, one per row (required)")

	cmd.Flags().Float64Var(&minsup, "minsup", 0.1, "minimum support threshold in (0, 1]")
	cmd.Flags().Float64Var(&minconf, "minconf", 0.5, "minimum confidence threshold in (0, 1]")
	cmd.MarkFlagRequired("input")

	return cmd
}

func newDCVerifyCmd() *cobra.Command {
	var (
		inputPath string
		dcText    string
		types     []string
	)

	cmd := &cobra.Command{
		Use:   "dcverify",
		Short: "check whether a denial constraint holds over a relation",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("conslat: opening input: %w", err)
			}
			defer f.Close()

			columnTypes, err := parseColumnTypes(types)
			if err != nil {
				return err
			}

			rel, err := ingest.ReadRelation(f, columnTypes)
			if err != nil {
				return err
			}

			v := dcverify.NewVerifier()
			if err := v.LoadData(rel); err != nil {
				return err
			}
			if err := v.Execute(context.Background(), dcText); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.Holds())
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a CSV file with a header row (required)")
	cmd.Flags().StringVar(&dcText, "dc", "", "denial constraint text, e.g. \"!(t.A == s.A and t.B < s.B)\" (required)")
	cmd.Flags().StringSliceVar(&types, "types", nil, "one type per column, in header order: int64|float64|string (required)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("dc")
	cmd.MarkFlagRequired("types")

	return cmd
}

func parseColumnTypes(names []string) ([]column.Type, error) {
	types := make([]column.Type, len(names))
	for i, name := range names {
		switch name {
		case "int64":
			types[i] = column.Int64Type{}
		case "float64":
			types[i] = column.Float64Type{}
		case "string":
			types[i] = column.StringType{}
		default:
			return nil, fmt.Errorf("conslat: unknown column type %q (want int64, float64, or string)", name)
		}
	}
	return types, nil
}
