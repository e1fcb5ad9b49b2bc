// Package algorithm implements the load/execute/reset lifecycle shared by
// the AR miner and DC verifier: an instance moves through
//
//	Created -> OptionsRegistered -> Loaded -> Executed -> (Reset -> Loaded)*
//
// and a keyed option registry distinguishes options that must be set
// before LoadData (load-time) from those needed only before Execute
// (execute-time), and required options from optional ones. Options carry
// no default values: Value returns nil for any key that was never set.
// Base is embedded by arules.Miner and dcverify.Verifier rather than used
// directly; it owns state transitions and option bookkeeping so each
// facade only implements its own load/execute work.
package algorithm

import (
	"errors"
	"sync"
)

// State is a lifecycle stage of an algorithm instance.
type State int

const (
	StateCreated State = iota
	StateOptionsRegistered
	StateLoaded
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOptionsRegistered:
		return "options-registered"
	case StateLoaded:
		return "loaded"
	case StateExecuted:
		return "executed"
	default:
		return "unknown"
	}
}

// Sentinel errors for algorithm lifecycle violations.
var (
	// ErrOutOfOrder is returned when a lifecycle method is called in a
	// state that does not permit it (e.g. Execute before LoadData).
	ErrOutOfOrder = errors.New("algorithm: method called out of lifecycle order")

	// ErrMissingOption is returned by RequireLoaded or RequireExecuted
	// when a required option key of that phase was never set.
	ErrMissingOption = errors.New("algorithm: required option not set")

	// ErrUnknownOption is returned when SetOption is given a key the
	// instance never registered.
	ErrUnknownOption = errors.New("algorithm: unknown option key")
)

// Phase distinguishes when an option must be available: before LoadData,
// or only before Execute.
type Phase int

const (
	LoadTime Phase = iota
	ExecuteTime
)

// OptionSpec describes one configurable option: its key, the phase by
// which it must be set, and whether it is required.
type OptionSpec struct {
	Key      string
	Phase    Phase
	Required bool
}

// Base implements the shared lifecycle and option registry. Embed it in a
// facade type and call RegisterOptions once from the facade's
// constructor, then SetOption, RequireLoaded, RequireExecuted, Value and
// Reset from the facade's own LoadData/Execute/Reset methods.
type Base struct {
	mu      sync.Mutex
	state   State
	specs   map[string]OptionSpec
	values  map[string]any
}

// RegisterOptions declares the option set an instance accepts. Must be
// called exactly once, from the facade constructor; moves the instance
// from Created to OptionsRegistered.
func (b *Base) RegisterOptions(specs []OptionSpec) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.specs = make(map[string]OptionSpec, len(specs))
	b.values = make(map[string]any, len(specs))
	for _, spec := range specs {
		b.specs[spec.Key] = spec
	}
	b.state = StateOptionsRegistered
}

// SetOption stores the value for a registered option key. Fails with
// ErrUnknownOption if key was not declared by RegisterOptions.
func (b *Base) SetOption(key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.specs[key]; !ok {
		return errorf(ErrUnknownOption, key)
	}
	b.values[key] = value
	return nil
}

// RequireLoaded transitions an instance from OptionsRegistered to Loaded,
// after verifying every load-time required option has a value. Fails
// with ErrOutOfOrder if not currently OptionsRegistered, or
// ErrMissingOption if a required load-time option is absent.
func (b *Base) RequireLoaded() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOptionsRegistered {
		return ErrOutOfOrder
	}
	if err := b.checkRequired(LoadTime); err != nil {
		return err
	}
	b.state = StateLoaded
	return nil
}

// RequireExecuted transitions an instance from Loaded to Executed, after
// verifying every execute-time required option has a value. Fails with
// ErrOutOfOrder if not currently Loaded, or ErrMissingOption if a
// required execute-time option is absent.
func (b *Base) RequireExecuted() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateLoaded {
		return ErrOutOfOrder
	}
	if err := b.checkRequired(ExecuteTime); err != nil {
		return err
	}
	b.state = StateExecuted
	return nil
}

// Reset returns an Executed instance to Loaded, discarding nothing about
// option values (only re-running LoadData changes loaded data). Fails
// with ErrOutOfOrder if not currently Executed.
func (b *Base) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateExecuted {
		return ErrOutOfOrder
	}
	b.state = StateLoaded
	return nil
}

// Value returns the stored value for key, or nil if never set.
func (b *Base) Value(key string) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.values[key]
}

// State returns the instance's current lifecycle state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Base) checkRequired(phase Phase) error {
	for key, spec := range b.specs {
		if spec.Required && spec.Phase == phase {
			if _, ok := b.values[key]; !ok {
				return errorf(ErrMissingOption, key)
			}
		}
	}
	return nil
}

func errorf(sentinel error, key string) error {
	return &keyedError{sentinel: sentinel, key: key}
}

// keyedError wraps a sentinel with the offending option key, while still
// satisfying errors.Is(err, sentinel).
type keyedError struct {
	sentinel error
	key      string
}

func (e *keyedError) Error() string {
	return e.sentinel.Error() + ": " + e.key
}

func (e *keyedError) Unwrap() error {
	return e.sentinel
}
