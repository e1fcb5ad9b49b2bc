// Package store holds an in-memory, read-only view of transactions for
// association-rule mining: for each transaction id, the set of item ids it
// contains, plus a per-item posting list (vertical tid-list) so support
// counting for an itemset is a bounded sequence of bitmap intersections
// rather than a full scan of every transaction.
//
// Item ids are assigned densely and stably, in order of first appearance,
// during construction. The store is built once from ingested transactions
// and never mutated afterwards.
package store

import (
	"errors"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrEmptyInput is returned by New when zero transactions are supplied.
// Association-rule mining on an empty relation is undefined.
var ErrEmptyInput = errors.New("store: empty input: no transactions ingested")

// ItemID identifies an item within a TransactionalStore. Ids are dense,
// assigned in order of first appearance, and stable for the store's
// lifetime.
type ItemID = uint32

// TransactionalStore is a read-only, in-memory view of transactions built
// from an external row source. Construct with New; once built, a store is
// never mutated.
type TransactionalStore struct {
	labels       []string         // id -> label, dense
	labelIndex   map[string]ItemID
	transactions []*roaring.Bitmap // tid -> item ids, ingestion order (deterministic)
	postings     map[ItemID]*roaring.Bitmap // item id -> tids containing it
}

// New builds a TransactionalStore from transactions, each a list of item
// labels. Transaction order is preserved and is the store's deterministic
// iteration order. Fails with ErrEmptyInput if transactions is empty.
func New(transactions [][]string) (*TransactionalStore, error) {
	if len(transactions) == 0 {
		return nil, ErrEmptyInput
	}

	s := &TransactionalStore{
		labelIndex: make(map[string]ItemID),
		postings:   make(map[ItemID]*roaring.Bitmap),
	}
	s.transactions = make([]*roaring.Bitmap, len(transactions))

	for tid, items := range transactions {
		bm := roaring.New()
		for _, label := range items {
			id, ok := s.labelIndex[label]
			if !ok {
				id = ItemID(len(s.labels))
				s.labelIndex[label] = id
				s.labels = append(s.labels, label)
				s.postings[id] = roaring.New()
			}
			bm.Add(id)
		}
		s.transactions[tid] = bm
		for _, id := range bm.ToArray() {
			s.postings[id].Add(uint32(tid))
		}
	}

	return s, nil
}

// NumTransactions returns the number of transactions in the store.
func (s *TransactionalStore) NumTransactions() int {
	return len(s.transactions)
}

// NumItems returns the number of distinct items assigned an ItemID.
func (s *TransactionalStore) NumItems() int {
	return len(s.labels)
}

// Label resolves an ItemID to its textual label. Panics if id was never
// assigned by this store (ids are only ever produced by New or by callers
// echoing ids obtained from this store).
func (s *TransactionalStore) Label(id ItemID) string {
	return s.labels[id]
}

// ItemID looks up the dense id assigned to label, if any.
func (s *TransactionalStore) ItemID(label string) (ItemID, bool) {
	id, ok := s.labelIndex[label]
	return id, ok
}

// Transactions returns the store's transactions in deterministic
// (ingestion) order. Callers must not mutate the returned bitmaps.
func (s *TransactionalStore) Transactions() []*roaring.Bitmap {
	return s.transactions
}

// Contains returns the number of transactions that contain every item id in
// items. Dividing by NumTransactions() yields items' support. An empty
// itemset is contained by every transaction.
//
// Complexity: O(k) bitmap intersections where k = items.GetCardinality(),
// short-circuiting to zero the moment any item's posting list is empty or
// the running intersection becomes empty.
func (s *TransactionalStore) Contains(items *roaring.Bitmap) int {
	if items == nil || items.IsEmpty() {
		return s.NumTransactions()
	}

	ids := items.ToArray()
	acc, ok := s.postings[ids[0]]
	if !ok {
		return 0
	}
	running := acc
	for _, id := range ids[1:] {
		pl, ok := s.postings[id]
		if !ok {
			return 0
		}
		running = roaring.And(running, pl)
		if running.IsEmpty() {
			return 0
		}
	}

	return int(running.GetCardinality())
}
