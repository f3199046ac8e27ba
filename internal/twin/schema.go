// Package twin implements a local twin of the CRM REST API: a chi router
// over a SQLite store. It backs the integration tests and the prospyr twin
// command so that the client can be exercised without a real account.
package twin

// Schema DDL. Records of every collection share one table; bodies are stored
// as JSON with the id kept in its own column.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    body TEXT NOT NULL,
    date_created INTEGER NOT NULL,
    date_modified INTEGER NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);`,
	`CREATE TABLE IF NOT EXISTS custom_field_definitions (
    id INTEGER PRIMARY KEY,
    body TEXT NOT NULL
);`,
}

// Collections served under /{collection}/.
var collections = map[string]bool{
	"people":        true,
	"companies":     true,
	"leads":         true,
	"opportunities": true,
}
