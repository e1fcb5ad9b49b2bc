package arules_test

import (
	"context"
	"fmt"

	"github.com/avldata/conslat/arules"
)

// ExampleMiner mines the trivial scenario from the specification's seed
// data: transactions [{1,2},{1,2},{1,3}] at minsup=0.5, minconf=0.9
// yield exactly one rule, {2} => {1}.
func ExampleMiner() {
	m := arules.NewMiner()
	if err := m.LoadData([][]string{
		{"1", "2"},
		{"1", "2"},
		{"1", "3"},
	}); err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := m.Execute(context.Background(), 0.5, 0.9); err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, r := range m.Rules() {
		lhs := r.LHS.ToArray()
		rhs := r.RHS.ToArray()
		fmt.Printf("{%s} => {%s}\n", m.Label(lhs[0]), m.Label(rhs[0]))
	}

	// Output:
	// {2} => {1}
}
