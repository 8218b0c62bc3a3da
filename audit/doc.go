// Package audit owns revision bookkeeping for versioned entities: the
// built-in revision entity, metadata resolution for user-supplied revision
// entities, and recording/reading per-change entity snapshots.
package audit
