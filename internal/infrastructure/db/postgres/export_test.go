package postgres

// SchemaStatements exposes the number of bootstrap statements to tests.
func SchemaStatements() int { return len(schema) }
