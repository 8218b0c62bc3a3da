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

package relic

import (
	"context"
	"sync"

	"github.com/tomoncle/relic/database"
	"github.com/tomoncle/relic/predicate"
	"github.com/tomoncle/relic/repository"
)

// AuditedService is the high level entry point for entity version history.
// It wraps a revision repository backed by the global database connection,
// built lazily on first use so services can be declared before InitDB runs.
type AuditedService[T any, ID comparable, N repository.RevisionNumber] interface {
	// Save inserts or updates the entity and records a revision.
	Save(ctx context.Context, entity *T) error

	// Delete removes the entity and records a terminal delete revision.
	Delete(ctx context.Context, id ID) error

	// Get returns the current state of the entity.
	Get(ctx context.Context, id ID) (*T, error)

	// All returns the current state of all entities.
	All(ctx context.Context) ([]*T, error)

	// Revisions returns the entity's full change history in ascending
	// revision-number order.
	Revisions(ctx context.Context, id ID) (repository.Revisions[T, N], error)

	// Revision returns the entity state captured under the given revision
	// number.
	Revision(ctx context.Context, id ID, number N) (*repository.Revision[T, N], error)

	// LastChangeRevision returns the most recent revision of the entity.
	LastChangeRevision(ctx context.Context, id ID) (*repository.Revision[T, N], error)

	// FindOneBy returns the single entity matching the predicate, or nil.
	FindOneBy(ctx context.Context, p predicate.Predicate) (*T, error)

	// FindAllBy returns every entity matching the predicate.
	FindAllBy(ctx context.Context, p predicate.Predicate) ([]*T, error)
}

// NewAuditedService returns an AuditedService for T using the default
// revision entity. Factory options customize the revision configuration, a
// custom revision entity among them.
func NewAuditedService[T any, ID comparable, N repository.RevisionNumber](opts ...repository.FactoryOption) AuditedService[T, ID, N] {
	return &auditedServiceImpl[T, ID, N]{opts: opts}
}

type auditedServiceImpl[T any, ID comparable, N repository.RevisionNumber] struct {
	opts []repository.FactoryOption
	once sync.Once
	repo repository.RevisionQueryRepository[T, ID, N]
	err  error
}

func (s *auditedServiceImpl[T, ID, N]) resolve() (repository.RevisionQueryRepository[T, ID, N], error) {
	s.once.Do(func() {
		factory, err := repository.NewRevisionRepositoryFactory(database.GetDB(), s.opts...)
		if err != nil {
			s.err = err
			return
		}
		s.repo, s.err = repository.NewRevisionQueryRepository[T, ID, N](factory)
	})
	return s.repo, s.err
}

func (s *auditedServiceImpl[T, ID, N]) Save(ctx context.Context, entity *T) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.Save(ctx, entity)
}

func (s *auditedServiceImpl[T, ID, N]) Delete(ctx context.Context, id ID) error {
	repo, err := s.resolve()
	if err != nil {
		return err
	}
	return repo.Delete(ctx, id)
}

func (s *auditedServiceImpl[T, ID, N]) Get(ctx context.Context, id ID) (*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindOne(ctx, id)
}

func (s *auditedServiceImpl[T, ID, N]) All(ctx context.Context) ([]*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindAll(ctx)
}

func (s *auditedServiceImpl[T, ID, N]) Revisions(ctx context.Context, id ID) (repository.Revisions[T, N], error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindRevisions(ctx, id)
}

func (s *auditedServiceImpl[T, ID, N]) Revision(ctx context.Context, id ID, number N) (*repository.Revision[T, N], error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindRevision(ctx, id, number)
}

func (s *auditedServiceImpl[T, ID, N]) LastChangeRevision(ctx context.Context, id ID) (*repository.Revision[T, N], error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindLastChangeRevision(ctx, id)
}

func (s *auditedServiceImpl[T, ID, N]) FindOneBy(ctx context.Context, p predicate.Predicate) (*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindOneBy(ctx, p)
}

func (s *auditedServiceImpl[T, ID, N]) FindAllBy(ctx context.Context, p predicate.Predicate) ([]*T, error) {
	repo, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return repo.FindAllBy(ctx, p)
}
