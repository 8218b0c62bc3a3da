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
	"reflect"
	"testing"
	"time"

	"github.com/tomoncle/relic/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type countryRecord struct {
	bun.BaseModel `bun:"table:factory_countries,alias:fc"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Code string `bun:"code,notnull"`
	Name string `bun:"name,notnull"`
}

type narrowRevision struct {
	bun.BaseModel `bun:"table:narrow_revisions"`

	Number     int32     `bun:"number,pk,autoincrement" audit:"revision_number"`
	RecordedAt time.Time `bun:"recorded_at" audit:"revision_timestamp"`
}

func TestFactoryDefaultsToBuiltinRevisionEntity(t *testing.T) {
	factory, err := NewRevisionRepositoryFactory(nil)
	require.NoError(t, err)
	assert.True(t, factory.Information().Default())
	assert.Equal(t, reflect.TypeOf(int64(0)), factory.Information().RevisionNumberType())
}

func TestFactoryResolvesCustomRevisionEntity(t *testing.T) {
	factory, err := NewRevisionRepositoryFactory(nil, WithRevisionEntity((*narrowRevision)(nil)))
	require.NoError(t, err)
	assert.False(t, factory.Information().Default())
	assert.Equal(t, reflect.TypeOf(int32(0)), factory.Information().RevisionNumberType())
}

func TestFactoryRejectsInvalidRevisionEntity(t *testing.T) {
	_, err := NewRevisionRepositoryFactory(nil, WithRevisionEntity("not a struct"))
	assert.ErrorContains(t, err, "must be a struct")

	type badRevision struct {
		ID int64 `bun:"id,pk,autoincrement"`
	}
	_, err = NewRevisionRepositoryFactory(nil, WithRevisionEntity((*badRevision)(nil)))
	assert.ErrorContains(t, err, "revision_number")
}

func TestRevisionNumberTypeMismatch(t *testing.T) {
	factory, err := NewRevisionRepositoryFactory(nil, WithRevisionEntity((*narrowRevision)(nil)))
	require.NoError(t, err)

	// Construction fails before any database access: the repository
	// declares int64 revision numbers but the configured entity stores
	// int32.
	_, err = NewRevisionRepository[countryRecord, int64, int64](factory)
	require.Error(t, err)

	var mismatch *RevisionTypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, reflect.TypeOf(int32(0)), mismatch.ConfiguredType)
	assert.Equal(t, reflect.TypeOf(int64(0)), mismatch.DeclaredType)
	assert.Contains(t, err.Error(), "int32")
	assert.Contains(t, err.Error(), "int64")
	assert.Contains(t, err.Error(), "countryRecord")

	_, err = NewRevisionQueryRepository[countryRecord, int64, int64](factory)
	assert.ErrorAs(t, err, &mismatch)

	_, err = BuildRepository[countryRecord, int64, int64](factory, CapabilityRevisions|CapabilityPredicates)
	assert.ErrorAs(t, err, &mismatch)
}

func TestBuildRepositoryRequiresRevisions(t *testing.T) {
	factory, err := NewRevisionRepositoryFactory(nil)
	require.NoError(t, err)

	_, err = BuildRepository[countryRecord, int64, int64](factory, CapabilityPredicates)
	assert.ErrorContains(t, err, "CapabilityRevisions")
}

func TestCapabilityHas(t *testing.T) {
	caps := CapabilityRevisions | CapabilityPredicates
	assert.True(t, caps.Has(CapabilityRevisions))
	assert.True(t, caps.Has(CapabilityPredicates))
	assert.True(t, caps.Has(CapabilityRevisions|CapabilityPredicates))
	assert.False(t, CapabilityRevisions.Has(CapabilityPredicates))
}

func TestFactoryRegistersAuditModels(t *testing.T) {
	factory, err := NewRevisionRepositoryFactory(nil)
	require.NoError(t, err)

	models := audit.Models(factory.Information())
	require.Len(t, models, 2)
	assert.IsType(t, (*audit.DefaultRevision)(nil), models[0])
	assert.IsType(t, (*audit.EntityRevision)(nil), models[1])
}
