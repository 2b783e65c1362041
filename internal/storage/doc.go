// Package storage provides per-project SQLite stores for normalized tickets
// and their embeddings.
//
// Every project lives in its own database file under one directory. The
// Manager owns the lifecycle (create, open, delete, count, list) and maps
// project names to filenames with an injective escape encoding:
//
//	"Proj"      -> "_50roj.db"
//	"team/a b"  -> "team_2fa_20b.db"
//
// # Database Schema
//
// Tables:
//   - tickets: one row per ingested record, scalar ticket columns plus the
//     raw payload and a float32 embedding blob whose length is fixed by the
//     store dimension (enforced by a CHECK constraint)
//   - store_meta: dimension and project name recorded at creation
//   - schema_version: applied migrations (semver)
//
// # Basic Usage
//
//	mgr := storage.NewManager("databases", 384, logger)
//	if _, err := mgr.Create(ctx, "P"); err != nil {
//	    return err
//	}
//
//	store, err := mgr.Open(ctx, "P")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_, err = store.Upsert(ctx, ticket)
//	results, err := store.Query(ctx, storage.Query{
//	    Vector: queryEmbedding,
//	    Where:  "status = ?",
//	    Args:   []any{"Open"},
//	    Limit:  5,
//	})
//
// Stores are never cached: each operation opens a fresh connection and the
// caller closes it.
//
// # Vector Operations
//
// Ranking uses vec_distance_l2 inside SQL. Smaller distances are closer;
// ties are broken by insertion order.
//
// # Build Tags
//
// CGO Build (sqlite_vec tag):
//
//   - Uses github.com/mattn/go-sqlite3 with the sqlite-vec extension
//
//     CGO_ENABLED=1 go build -tags "sqlite_vec"
//
// Pure Go Build (default, or purego tag):
//
//   - Uses modernc.org/sqlite with vec_distance_l2 and vec_version
//     registered as Go scalar functions
//
//     CGO_ENABLED=0 go build -tags "purego"
package storage
