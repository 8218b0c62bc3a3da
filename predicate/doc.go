// Package predicate provides composable, type-safe filter expressions that
// compile to WHERE clause fragments executable by the repository layer.
package predicate
