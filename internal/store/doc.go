// Package store defines the persistence interfaces consumed by the API
// handlers and the scheduler, together with the shared error taxonomy.
package store
