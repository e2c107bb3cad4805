// Package api contains the HTTP handlers, request/response models and
// error mapping for the REST surface: authentication, task and subtask
// CRUD, and the analytics endpoints. Handlers depend on store interfaces
// and services, never on concrete database types, so tests drive them
// through httptest with in-memory fakes.
package api
