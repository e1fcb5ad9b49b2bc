// Package dcverify is the denial-constraint verification facade: it wires
// column.Relation, dc.Parse, and verify.Holds behind the same
// load/execute/reset lifecycle arules.Miner exposes for association-rule
// mining.
package dcverify

import (
	"context"

	"github.com/avldata/conslat/algorithm"
	"github.com/avldata/conslat/column"
	"github.com/avldata/conslat/dc"
	"github.com/avldata/conslat/verify"
)

// Option keys for Verifier's registered options.
const (
	optRelation         = "relation"
	optDenialConstraint = "denial_constraint"
)

// Verifier checks a single textual denial constraint against a loaded
// relation. Construct with NewVerifier; a Verifier is not safe for
// concurrent use by multiple goroutines, though independent Verifiers may
// run in parallel.
type Verifier struct {
	algorithm.Base

	rel    *column.Relation
	dc     dc.DC
	result bool
}

// NewVerifier constructs a Verifier ready for LoadData.
func NewVerifier() *Verifier {
	v := &Verifier{}
	v.RegisterOptions([]algorithm.OptionSpec{
		{Key: optRelation, Phase: algorithm.LoadTime, Required: true},
		{Key: optDenialConstraint, Phase: algorithm.ExecuteTime, Required: true},
	})
	return v
}

// LoadData installs the relation the denial constraint will be checked
// against.
func (v *Verifier) LoadData(rel *column.Relation) error {
	if err := v.SetOption(optRelation, rel); err != nil {
		return err
	}
	v.rel = rel
	return v.RequireLoaded()
}

// Execute parses dcText against the loaded relation's schema and checks
// whether it holds. Fails with dc.ErrParse, dc.ErrUnknownColumn,
// verify.ErrUnsupportedTypes, or verify.ErrEmptyRelation; see those
// packages for exact conditions. Cancelling ctx aborts verification at
// the next row boundary. On any such failure the instance falls back to
// the Loaded state (the Executed transition is rolled back) instead of
// claiming a run that never committed a result; Holds/DC keep returning
// whatever the last successful Execute produced.
func (v *Verifier) Execute(ctx context.Context, dcText string) error {
	if err := v.SetOption(optDenialConstraint, dcText); err != nil {
		return err
	}
	if err := v.RequireExecuted(); err != nil {
		return err
	}

	parsed, err := dc.Parse(dcText, v.rel)
	if err != nil {
		_ = v.Base.Reset() // state is Executed here; Reset cannot fail
		return err
	}

	holds, err := verify.Holds(ctx, parsed, v.rel)
	if err != nil {
		_ = v.Base.Reset() // state is Executed here; Reset cannot fail
		return err
	}

	v.dc = parsed
	v.result = holds
	return nil
}

// Holds returns the result of the most recent Execute.
func (v *Verifier) Holds() bool {
	return v.result
}

// DC returns the parsed denial constraint checked by the most recent
// Execute.
func (v *Verifier) DC() dc.DC {
	return v.dc
}

// Reset returns the Verifier to the Loaded state, so Execute can be
// called again with a different denial constraint over the same loaded
// relation.
func (v *Verifier) Reset() error {
	if err := v.Base.Reset(); err != nil {
		return err
	}
	v.dc = dc.DC{}
	v.result = false
	return nil
}
