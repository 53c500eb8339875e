package types

// Record is a single row scanned from the source table, keyed by column name
type Record map[string]any
