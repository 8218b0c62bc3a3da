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

	"github.com/uptrace/bun"
)

type predicateExecutorImpl[T any] struct {
	db   *bun.DB
	base Repository[T]
}

func newPredicateExecutorImpl[T any](db *bun.DB) *predicateExecutorImpl[T] {
	return &predicateExecutorImpl[T]{db: db, base: NewRepository[T](db)}
}

func (e *predicateExecutorImpl[T]) FindOneBy(ctx context.Context, p predicate.Predicate) (*T, error) {
	entities, err := e.FindAllBy(ctx, p)
	if err != nil {
		return nil, err
	}
	switch len(entities) {
	case 0:
		return nil, nil
	case 1:
		return entities[0], nil
	default:
		return nil, ErrNonUniqueResult
	}
}

func (e *predicateExecutorImpl[T]) FindAllBy(ctx context.Context, p predicate.Predicate) ([]*T, error) {
	entities, err := e.base.List(ctx, predicate.Compile(p))
	if err != nil {
		return nil, wrapDBError(err)
	}
	return entities, nil
}

func (e *predicateExecutorImpl[T]) CountBy(ctx context.Context, p predicate.Predicate) (int, error) {
	query := e.db.NewSelect().Model((*T)(nil))
	if filter := predicate.Compile(p); filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	count, err := query.Count(ctx)
	if err != nil {
		return 0, wrapDBError(err)
	}
	return count, nil
}

func (e *predicateExecutorImpl[T]) ExistsBy(ctx context.Context, p predicate.Predicate) (bool, error) {
	query := e.db.NewSelect().Model((*T)(nil))
	if filter := predicate.Compile(p); filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	exists, err := query.Exists(ctx)
	if err != nil {
		return false, wrapDBError(err)
	}
	return exists, nil
}
