// Package sqlite provides the durable learner progress store backed by
// SQLite. Schema changes ship as embedded migrations applied on open.
package sqlite
