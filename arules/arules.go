// Package arules is the association-rule mining facade: it wires
// store.TransactionalStore, itemset.FrequentItemsets, and rules.Lattice
// behind the load/execute/reset lifecycle of algorithm.Base, the same
// shape every entry point in this module exposes (compare dcverify.Verifier).
package arules

import (
	"context"

	"github.com/avldata/conslat/algorithm"
	"github.com/avldata/conslat/itemset"
	"github.com/avldata/conslat/rules"
	"github.com/avldata/conslat/store"
)

// Option keys for Miner's registered options.
const (
	optTransactions = "transactions"
	optMinSup       = "minsup"
	optMinConf      = "minconf"
)

// Miner mines frequent itemsets and high-confidence association rules
// from a batch of transactions. Construct with NewMiner; a Miner is not
// safe for concurrent use by multiple goroutines, though independent
// Miners may run in parallel.
type Miner struct {
	algorithm.Base

	s       *store.TransactionalStore
	freq    []itemset.FrequentItemset
	lattice *rules.Lattice
}

// NewMiner constructs a Miner ready for LoadData.
func NewMiner() *Miner {
	m := &Miner{}
	m.RegisterOptions([]algorithm.OptionSpec{
		{Key: optTransactions, Phase: algorithm.LoadTime, Required: true},
		{Key: optMinSup, Phase: algorithm.ExecuteTime, Required: true},
		{Key: optMinConf, Phase: algorithm.ExecuteTime, Required: true},
	})
	return m
}

// LoadData builds the transactional store backing this run. Transactions
// is a list of rows, each a list of item labels. Fails with
// store.ErrEmptyInput if transactions is empty.
func (m *Miner) LoadData(transactions [][]string) error {
	if err := m.SetOption(optTransactions, transactions); err != nil {
		return err
	}

	s, err := store.New(transactions)
	if err != nil {
		return err
	}
	m.s = s

	return m.RequireLoaded()
}

// Execute mines every itemset whose support is >= minsup, then expands
// each into rules whose confidence is >= minconf. Cancelling ctx aborts
// at the next frequent-itemset boundary, leaving no partial rule set: on
// failure or cancellation the instance falls back to the Loaded state
// (the Executed transition is rolled back) rather than claiming a run
// that never produced a committed result, and Rules returns whatever it
// last returned before this call.
func (m *Miner) Execute(ctx context.Context, minsup, minconf float64) error {
	if err := m.SetOption(optMinSup, minsup); err != nil {
		return err
	}
	if err := m.SetOption(optMinConf, minconf); err != nil {
		return err
	}
	if err := m.RequireExecuted(); err != nil {
		return err
	}

	freq, err := itemset.FrequentItemsets(m.s, minsup)
	if err != nil {
		_ = m.Base.Reset() // state is Executed here; Reset cannot fail
		return err
	}

	lattice, err := rules.NewLattice(m.s, minconf)
	if err != nil {
		_ = m.Base.Reset() // state is Executed here; Reset cannot fail
		return err
	}
	for _, fi := range freq {
		if err := lattice.GenerateFrom(ctx, fi); err != nil {
			_ = m.Base.Reset() // state is Executed here; Reset cannot fail
			return err
		}
	}

	m.freq = freq
	m.lattice = lattice
	return nil
}

// FrequentItemsets returns the itemsets found by the most recent Execute.
func (m *Miner) FrequentItemsets() []itemset.FrequentItemset {
	return m.freq
}

// Rules returns the association rules found by the most recent Execute.
func (m *Miner) Rules() []rules.AssociationRule {
	if m.lattice == nil {
		return nil
	}
	return m.lattice.Collection()
}

// Label resolves an item id to its textual label.
func (m *Miner) Label(id store.ItemID) string {
	return m.s.Label(id)
}

// Render formats r using the labels of the store this Miner was loaded
// with.
func (m *Miner) Render(r rules.AssociationRule) string {
	return r.Render(m.s)
}

// Reset returns the Miner to the Loaded state, discarding the prior
// Execute's itemsets and rules so Execute can be called again with
// different thresholds over the same loaded transactions.
func (m *Miner) Reset() error {
	if err := m.Base.Reset(); err != nil {
		return err
	}
	m.freq = nil
	m.lattice = nil
	return nil
}
