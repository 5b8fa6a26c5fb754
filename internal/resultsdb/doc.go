// Package resultsdb persists analysis runs and their outputs: one row per
// DoD computation (inputs, threshold, change statistics) and one row per
// sampled transect summary.
//
// This is consumer-side glue; the core never touches it. Schema lives in
// db/migrations and is managed with golang-migrate.
package resultsdb
