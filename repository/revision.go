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
	"fmt"
	"time"

	"github.com/tomoncle/relic/audit"
	"github.com/tomoncle/relic/types"

	"github.com/uptrace/bun"
)

// RevisionNumber constrains the revision-number type parameter declared on
// revision repositories. Revision numbers are monotonically increasing
// signed integers.
type RevisionNumber interface {
	~int | ~int32 | ~int64
}

// Revision is one captured entity state: the revision number it was written
// under, how the entity changed, when, and the entity content at that point.
type Revision[T any, N RevisionNumber] struct {
	Number    N
	Type      audit.RevisionType
	Timestamp time.Time
	Entity    *T
}

// Revisions is an ordered collection of revisions, ascending by number.
type Revisions[T any, N RevisionNumber] []*Revision[T, N]

// Latest returns the most recent revision, or nil for an empty collection.
func (rs Revisions[T, N]) Latest() *Revision[T, N] {
	if len(rs) == 0 {
		return nil
	}
	return rs[len(rs)-1]
}

// Numbers returns the revision numbers in collection order.
func (rs Revisions[T, N]) Numbers() []N {
	numbers := make([]N, len(rs))
	for i, rev := range rs {
		numbers[i] = rev.Number
	}
	return numbers
}

// RevisionRepository is a repository whose write operations capture entity
// version history. T is the domain entity, ID its identifier type, and N the
// revision-number type, which must match the configured revision entity.
type RevisionRepository[T any, ID comparable, N RevisionNumber] interface {
	// Save inserts or updates the entity and records a revision for the
	// change in the same transaction.
	Save(ctx context.Context, entity *T) error

	// Delete removes the entity and records a terminal delete revision
	// holding its last state.
	Delete(ctx context.Context, id ID) error

	// FindOne returns the current state of the entity, or ErrNotFound.
	FindOne(ctx context.Context, id ID) (*T, error)

	// FindAll returns the current state of all entities.
	FindAll(ctx context.Context) ([]*T, error)

	// FindRevisions returns all revisions of the entity in ascending
	// revision-number order.
	FindRevisions(ctx context.Context, id ID) (Revisions[T, N], error)

	// FindRevisionsPage returns one page of the entity's revisions, still
	// in ascending revision-number order.
	FindRevisionsPage(ctx context.Context, id ID, page *types.PageRequest) (*types.Pagination[Revision[T, N]], error)

	// FindRevision returns the entity revision written under the given
	// revision number, or ErrNotFound.
	FindRevision(ctx context.Context, id ID, number N) (*Revision[T, N], error)

	// FindLastChangeRevision returns the most recent revision of the
	// entity, or ErrNotFound when it was never saved.
	FindLastChangeRevision(ctx context.Context, id ID) (*Revision[T, N], error)
}

// RevisionQueryRepository composes revision history with predicate queries
// over the same underlying data.
type RevisionQueryRepository[T any, ID comparable, N RevisionNumber] interface {
	RevisionRepository[T, ID, N]
	PredicateExecutor[T]
}

type revisionRepositoryImpl[T any, ID comparable, N RevisionNumber] struct {
	db         *bun.DB
	base       Repository[T]
	auditor    *audit.Auditor
	entityName string
}

func newRevisionRepositoryImpl[T any, ID comparable, N RevisionNumber](db *bun.DB, auditor *audit.Auditor) *revisionRepositoryImpl[T, ID, N] {
	return &revisionRepositoryImpl[T, ID, N]{
		db:         db,
		base:       NewRepository[T](db),
		auditor:    auditor,
		entityName: audit.EntityName(new(T)),
	}
}

func (r *revisionRepositoryImpl[T, ID, N]) Save(ctx context.Context, entity *T) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fresh, err := audit.HasZeroKey(entity)
		if err != nil {
			return err
		}
		if !fresh {
			// App-assigned keys reach this branch on first save too, so
			// the row's presence decides between insert and update.
			exists, err := tx.NewSelect().Model(entity).WherePK().Exists(ctx)
			if err != nil {
				return wrapDBError(err)
			}
			fresh = !exists
		}

		op := audit.RevisionUpdate
		if fresh {
			op = audit.RevisionInsert
			if _, err := tx.NewInsert().Model(entity).Exec(ctx); err != nil {
				return wrapDBError(err)
			}
		} else {
			if _, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx); err != nil {
				return wrapDBError(err)
			}
		}

		_, err = r.auditor.Record(ctx, tx, op, entity)
		return err
	})
}

func (r *revisionRepositoryImpl[T, ID, N]) Delete(ctx context.Context, id ID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		entity := new(T)
		if err := tx.NewSelect().Model(entity).Where("id = ?", id).Scan(ctx); err != nil {
			return wrapDBError(err)
		}
		if _, err := tx.NewDelete().Model(entity).WherePK().Exec(ctx); err != nil {
			return wrapDBError(err)
		}
		_, err := r.auditor.Record(ctx, tx, audit.RevisionDelete, entity)
		return err
	})
}

func (r *revisionRepositoryImpl[T, ID, N]) FindOne(ctx context.Context, id ID) (*T, error) {
	entity, err := r.base.GetOne(ctx, id)
	if err != nil {
		return nil, wrapDBError(err)
	}
	return entity, nil
}

func (r *revisionRepositoryImpl[T, ID, N]) FindAll(ctx context.Context) ([]*T, error) {
	return r.base.GetAll(ctx)
}

func (r *revisionRepositoryImpl[T, ID, N]) FindRevisions(ctx context.Context, id ID) (Revisions[T, N], error) {
	entries, err := r.auditor.Revisions(ctx, r.db, r.entityName, entityKey(id))
	if err != nil {
		return nil, wrapDBError(err)
	}
	revisions := make(Revisions[T, N], 0, len(entries))
	for _, entry := range entries {
		rev, err := r.toRevision(entry)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

func (r *revisionRepositoryImpl[T, ID, N]) FindRevisionsPage(ctx context.Context, id ID, page *types.PageRequest) (*types.Pagination[Revision[T, N]], error) {
	pagination := types.NewDefaultPagination[Revision[T, N]](page.GetPage(), page.GetPageSize())
	key := entityKey(id)

	total, err := r.auditor.CountRevisions(ctx, r.db, r.entityName, key)
	if err != nil || total == 0 {
		return pagination, wrapDBError(err)
	}
	pagination.Total = total

	entries, err := r.auditor.RevisionsRange(ctx, r.db, r.entityName, key, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, wrapDBError(err)
	}
	for _, entry := range entries {
		rev, err := r.toRevision(entry)
		if err != nil {
			return nil, err
		}
		pagination.Items = append(pagination.Items, rev)
	}
	return pagination, nil
}

func (r *revisionRepositoryImpl[T, ID, N]) FindRevision(ctx context.Context, id ID, number N) (*Revision[T, N], error) {
	entry, err := r.auditor.Revision(ctx, r.db, r.entityName, entityKey(id), int64(number))
	if err != nil {
		return nil, wrapDBError(err)
	}
	return r.toRevision(entry)
}

func (r *revisionRepositoryImpl[T, ID, N]) FindLastChangeRevision(ctx context.Context, id ID) (*Revision[T, N], error) {
	entry, err := r.auditor.LastRevision(ctx, r.db, r.entityName, entityKey(id))
	if err != nil {
		return nil, wrapDBError(err)
	}
	return r.toRevision(entry)
}

func (r *revisionRepositoryImpl[T, ID, N]) toRevision(entry *audit.EntityRevision) (*Revision[T, N], error) {
	entity := new(T)
	if err := entry.DecodeSnapshot(entity); err != nil {
		return nil, fmt.Errorf("failed to decode %s revision %d: %w", r.entityName, entry.RevisionID, err)
	}
	return &Revision[T, N]{
		Number:    N(entry.RevisionID),
		Type:      entry.RevisionType(),
		Timestamp: entry.RecordedAt,
		Entity:    entity,
	}, nil
}

// entityKey renders an identifier the same way the auditor renders primary
// key values, so lookups use identical audit keys.
func entityKey[ID comparable](id ID) string {
	return fmt.Sprintf("%v", id)
}
