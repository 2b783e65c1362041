// Package searcher answers hybrid ticket queries.
//
// A request carries optional free text and an optional predicate. Free text
// is embedded and ranks results by L2 distance (ascending, ties broken by
// insertion order). The predicate is parsed by package filter into a
// parameterized SQL fragment over the ticket columns and restricts which
// rows are eligible. Without free text, results come back in insertion
// order with a nil distance.
//
//	s := searcher.New(stores, emb, logger)
//	results, err := s.Search(ctx, searcher.Request{
//	    Project:   "P",
//	    Query:     "login page broken",
//	    Predicate: "status = 'In Progress'",
//	    TopN:      5,
//	})
//
// Query embeddings go through the embedder's LRU cache, so repeated
// searches for the same text skip the provider.
package searcher
