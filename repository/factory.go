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
	"fmt"
	"reflect"

	"github.com/tomoncle/relic/audit"
	"github.com/tomoncle/relic/database"

	"github.com/uptrace/bun"
)

// Capability selects the query features a built repository exposes.
type Capability uint8

const (
	// CapabilityRevisions enables revision history reads and audited writes.
	CapabilityRevisions Capability = 1 << iota

	// CapabilityPredicates enables composable predicate queries.
	CapabilityPredicates
)

// Has reports whether all capabilities in other are enabled.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// FactoryOption customizes a RevisionRepositoryFactory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	revisionEntity interface{}
}

// WithRevisionEntity configures a custom revision entity model. The model
// must carry audit struct tags marking its revision number and timestamp
// fields. Without this option the factory uses audit.DefaultRevision.
func WithRevisionEntity(model interface{}) FactoryOption {
	return func(cfg *factoryConfig) {
		cfg.revisionEntity = model
	}
}

// RevisionRepositoryFactory builds revision repositories sharing one
// revision entity configuration and one auditor. Construction resolves the
// revision entity metadata once and registers the audit models with the
// database model registry, so migrations create the audit tables alongside
// domain tables.
type RevisionRepositoryFactory struct {
	db      *bun.DB
	info    audit.RevisionInformation
	auditor *audit.Auditor
}

// NewRevisionRepositoryFactory resolves revision entity metadata and returns
// a factory. It fails when a configured revision entity is missing required
// audit tags or uses an unsupported revision number field type. Resolution
// and validation touch no data, so a factory can be built before the
// database connection is.
func NewRevisionRepositoryFactory(db *bun.DB, opts ...FactoryOption) (*RevisionRepositoryFactory, error) {
	cfg := &factoryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	info := audit.DefaultRevisionInformation()
	if cfg.revisionEntity != nil {
		resolved, err := audit.NewRevisionInformation(cfg.revisionEntity)
		if err != nil {
			return nil, err
		}
		info = resolved
	}

	for _, model := range audit.Models(info) {
		database.RegisteredModel(database.NewModelAdapter(model, 0))
	}

	return &RevisionRepositoryFactory{
		db:      db,
		info:    info,
		auditor: audit.NewAuditor(info),
	}, nil
}

// Information returns the resolved revision entity metadata.
func (f *RevisionRepositoryFactory) Information() audit.RevisionInformation {
	return f.info
}

// NewRevisionRepository builds a revision repository for T. The declared
// revision number type N is checked against the configured revision entity
// and a RevisionTypeMismatchError is returned when they disagree.
func NewRevisionRepository[T any, ID comparable, N RevisionNumber](f *RevisionRepositoryFactory) (RevisionRepository[T, ID, N], error) {
	if err := validateRevisionNumberType[T, ID, N](f); err != nil {
		return nil, err
	}
	return newRevisionRepositoryImpl[T, ID, N](f.db, f.auditor), nil
}

// NewRevisionQueryRepository builds a revision repository for T that also
// executes predicate queries.
func NewRevisionQueryRepository[T any, ID comparable, N RevisionNumber](f *RevisionRepositoryFactory) (RevisionQueryRepository[T, ID, N], error) {
	if err := validateRevisionNumberType[T, ID, N](f); err != nil {
		return nil, err
	}
	return &revisionQueryRepositoryImpl[T, ID, N]{
		revisionRepositoryImpl: newRevisionRepositoryImpl[T, ID, N](f.db, f.auditor),
		predicateExecutorImpl:  newPredicateExecutorImpl[T](f.db),
	}, nil
}

// BuildRepository dispatches on the requested capabilities. Repositories
// built without CapabilityPredicates never pay for predicate machinery, and
// callers that only need the composed surface ask for both.
func BuildRepository[T any, ID comparable, N RevisionNumber](f *RevisionRepositoryFactory, caps Capability) (RevisionRepository[T, ID, N], error) {
	if !caps.Has(CapabilityRevisions) {
		return nil, fmt.Errorf("repository for %s requires CapabilityRevisions", audit.EntityName(new(T)))
	}
	if caps.Has(CapabilityPredicates) {
		return NewRevisionQueryRepository[T, ID, N](f)
	}
	return NewRevisionRepository[T, ID, N](f)
}

type revisionQueryRepositoryImpl[T any, ID comparable, N RevisionNumber] struct {
	*revisionRepositoryImpl[T, ID, N]
	*predicateExecutorImpl[T]
}

func validateRevisionNumberType[T any, ID comparable, N RevisionNumber](f *RevisionRepositoryFactory) error {
	declared := reflect.TypeOf((*N)(nil)).Elem()
	configured := f.info.RevisionNumberType()
	if declared != configured {
		return &RevisionTypeMismatchError{
			Repository:     fmt.Sprintf("RevisionRepository[%s]", audit.EntityName(new(T))),
			ConfiguredType: configured,
			DeclaredType:   declared,
		}
	}
	return nil
}
