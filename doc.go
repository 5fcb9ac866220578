// Package allocation values a personal portfolio in a single base currency
// and measures how far each holding drifts from its target allocation.
//
// The core functionalities include:
//   - Market Snapshot: a ticker keyed store of quotes (price, currency, direct
//     FX override, alias to another ticker) merged with upsert semantics, and
//     an FX table of rates to the base currency.
//   - Price Resolution: a ticker's price in the base currency, following
//     ticker aliases depth first and treating alias cycles as unknown prices.
//   - Valuation: per holding value, cost and P&L in the base currency, then
//     portfolio totals, actual weights and deviation from target weights,
//     classified as Overweight, Underweight or Neutral against a threshold.
//   - Boundaries: importers for holdings and market CSV files, the
//     structured config document and the fetched prices document, plus the
//     persistence of the whole editing session.
//
// Missing data is never an error. Every number that cannot be computed is an
// unknown Value, and unknown values propagate through arithmetic. Only
// portfolio sums tolerate them, so that one incomplete holding does not
// blank out the whole portfolio.
//
// This package serves as the foundational logic for the `alloc` command-line
// tool.
package allocation
