// Package repository provides generic repositories built on Bun: a CRUD and
// pagination base, predicate query execution, and revision repositories whose
// writes capture entity version history.
//
// Revision repositories are produced by a RevisionRepositoryFactory, which
// resolves the revision entity configuration once and validates each
// repository's declared revision number type parameter against it before any
// data access happens.
package repository
