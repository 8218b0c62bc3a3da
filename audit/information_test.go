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

package audit

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type shortRevision struct {
	bun.BaseModel `bun:"table:short_revisions"`

	Number    int32     `bun:"number,pk,autoincrement" audit:"revision_number"`
	Timestamp time.Time `bun:"timestamp" audit:"revision_timestamp"`
	Operator  string    `bun:"operator"`
}

type untaggedRevision struct {
	ID        int64     `bun:"id,pk,autoincrement"`
	CreatedAt time.Time `bun:"created_at"`
}

type stringNumberRevision struct {
	Number string `bun:"number,pk" audit:"revision_number"`
}

func TestDefaultRevisionInformation(t *testing.T) {
	info := DefaultRevisionInformation()

	assert.True(t, info.Default())
	assert.Equal(t, reflect.TypeOf(int64(0)), info.RevisionNumberType())

	_, ok := info.Model().(*DefaultRevision)
	assert.True(t, ok)

	instance := info.NewInstance()
	rev, ok := instance.(*DefaultRevision)
	require.True(t, ok)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	info.Prepare(instance, at)
	assert.Equal(t, at, rev.CreatedAt)

	rev.ID = 42
	number, err := info.RevisionNumber(instance)
	require.NoError(t, err)
	assert.Equal(t, int64(42), number)
}

func TestNewRevisionInformationReflection(t *testing.T) {
	info, err := NewRevisionInformation((*shortRevision)(nil))
	require.NoError(t, err)

	assert.False(t, info.Default())
	assert.Equal(t, reflect.TypeOf(int32(0)), info.RevisionNumberType())

	_, ok := info.Model().(*shortRevision)
	assert.True(t, ok)

	instance := info.NewInstance()
	rev, ok := instance.(*shortRevision)
	require.True(t, ok)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	info.Prepare(instance, at)
	assert.Equal(t, at, rev.Timestamp)

	rev.Number = 7
	number, err := info.RevisionNumber(instance)
	require.NoError(t, err)
	assert.Equal(t, int64(7), number)
}

func TestNewRevisionInformationDefaults(t *testing.T) {
	info, err := NewRevisionInformation(nil)
	require.NoError(t, err)
	assert.True(t, info.Default())

	// The built-in entity resolves to the static metadata even when passed
	// explicitly.
	info, err = NewRevisionInformation((*DefaultRevision)(nil))
	require.NoError(t, err)
	assert.True(t, info.Default())
}

func TestNewRevisionInformationErrors(t *testing.T) {
	_, err := NewRevisionInformation("not a struct")
	assert.ErrorContains(t, err, "must be a struct")

	_, err = NewRevisionInformation((*untaggedRevision)(nil))
	assert.ErrorContains(t, err, "revision_number")

	_, err = NewRevisionInformation((*stringNumberRevision)(nil))
	assert.ErrorContains(t, err, "must be a signed integer")
}

func TestModels(t *testing.T) {
	models := Models(DefaultRevisionInformation())
	require.Len(t, models, 2)
	assert.IsType(t, (*DefaultRevision)(nil), models[0])
	assert.IsType(t, (*EntityRevision)(nil), models[1])
}
