// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations work against store.DBTX, so the same
// code runs on a plain connection pool or inside a caller-managed
// transaction via WithTx.
//
// Database errors are translated into the sentinel errors of the store
// package through MapError; callers never see driver-level error types.
package postgres
