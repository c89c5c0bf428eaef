//go:build integration

// Package testdb provides helpers for integration tests against a real
// PostgreSQL database.
//
// Tests are skipped when DATABASE_URL (or FOLIO_TEST_DB_URL) is unset. The
// schema is migrated once per test binary with the embedded goose migrations.
// Two isolation styles are offered:
//
//   - WithTx runs the test inside a transaction that is always rolled back.
//     Tests using it may run in parallel.
//   - ResetTables truncates posts and tags. Tests that need committed data,
//     such as concurrency tests, use it and must not run in parallel.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        posts := postgres.NewPostgresPostStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
