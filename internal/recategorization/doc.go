/*
Package recategorization classifies simplified-regime taxpayers into a category
for a fiscal period and composes the periodic fee owed for that category.

The engine is pure. Apart from loading a period's scale and fee tables through
a Tables source it performs no I/O and keeps no state, so one Engine may be
shared by every request and goroutine.

Usage:

	eng := recategorization.NewEngine(tables, recategorization.DefaultConfig())

	// One client
	res, err := eng.Recategorize(ctx, "2024-H2", metrics)

	// Many clients, each outcome reported independently
	report := eng.RecategorizeBatch(ctx, items, recategorization.BatchOptions{Workers: 8})

Outcomes:

A client whose metrics exceed every category is not an error. The result has
Change set to ChangeOutOfRange and carries the exceeded dimension, and no fee is
computed. Errors fall in two families:
  - ErrConfiguration (*ConfigError): missing or inconsistent period, scale or
    fee component data
  - ErrInvalidInput (*InputError): malformed client metrics, rejected before
    classification

The active period is never looked up here. Callers resolve the period and pass
it explicitly.
*/
package recategorization
