// Package dictionary provides named key-value stores that configuration such
// as the cut scene list is read from at request time. Every store reads
// through to its backing system on each lookup.
package dictionary

import (
	_ "embed"
)

// Schema creates the table read by Postgres.
//
//go:embed sql/schema.sql
var Schema string
