// Package conslat is a data-profiling and constraint-discovery toolkit
// for relational tables, built around two independent cores:
//
//	store/, itemset/, rules/   — association-rule mining: frequent
//	                             itemsets over a transactional store,
//	                             expanded into confident rules via a
//	                             level-wise rule lattice.
//	column/, dc/, verify/     — denial-constraint verification: a typed
//	                             columnar relation, a textual DC parser,
//	                             and a shape-specialized verifier.
//
// algorithm/ carries the load/execute/reset lifecycle shared by both
// cores; arules/ and dcverify/ are the facades that wire each core's
// pieces behind that lifecycle. ingest/ reads CSV input into the shapes
// those facades expect. cmd/conslat is a thin CLI adapter over both
// facades.
//
//	go get github.com/avldata/conslat
package conslat
