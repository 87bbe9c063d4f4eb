// Package aggregates owns the transaction boundaries for writes that must keep
// several tables consistent.
//
// The meal ledger composes the table repos from internal/data/repos/meals so that a
// meal record and its occurrence counter always change together or not at all.
package aggregates
