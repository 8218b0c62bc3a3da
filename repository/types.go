/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/tomoncle/relic/predicate"
	"github.com/tomoncle/relic/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
// Writes through this surface bypass revision capture; audited code paths
// go through RevisionRepository instead.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD and pagination and exposes Bun query builders
// for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

// PredicateExecutor queries entities with composable, type-safe filter
// expressions instead of fixed query methods.
type PredicateExecutor[T any] interface {
	// FindOneBy returns the single entity matching the predicate, nil when
	// nothing matches, or ErrNonUniqueResult when more than one row does.
	FindOneBy(ctx context.Context, p predicate.Predicate) (*T, error)

	// FindAllBy returns every entity matching the predicate.
	FindAllBy(ctx context.Context, p predicate.Predicate) ([]*T, error)

	// CountBy returns the number of entities matching the predicate.
	CountBy(ctx context.Context, p predicate.Predicate) (int, error)

	// ExistsBy reports whether any entity matches the predicate.
	ExistsBy(ctx context.Context, p predicate.Predicate) (bool, error)
}
