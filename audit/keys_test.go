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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type taggedEntity struct {
	bun.BaseModel `bun:"table:tagged_entities"`

	Code string `bun:"code,pk"`
	Name string `bun:"name"`
}

type fallbackEntity struct {
	ID   int64
	Name string
}

type keylessEntity struct {
	Name string
}

func TestEntityName(t *testing.T) {
	assert.Equal(t, "taggedEntity", EntityName(taggedEntity{}))
	assert.Equal(t, "taggedEntity", EntityName(&taggedEntity{}))
	assert.Equal(t, "taggedEntity", EntityName((*taggedEntity)(nil)))
}

func TestEntityKey(t *testing.T) {
	key, err := EntityKey(&taggedEntity{Code: "DE", Name: "Deutschland"})
	require.NoError(t, err)
	assert.Equal(t, "DE", key)

	key, err = EntityKey(&fallbackEntity{ID: 17})
	require.NoError(t, err)
	assert.Equal(t, "17", key)

	_, err = EntityKey(&keylessEntity{Name: "nothing"})
	assert.ErrorContains(t, err, "no primary key")
}

func TestHasZeroKey(t *testing.T) {
	zero, err := HasZeroKey(&fallbackEntity{})
	require.NoError(t, err)
	assert.True(t, zero)

	zero, err = HasZeroKey(&fallbackEntity{ID: 3})
	require.NoError(t, err)
	assert.False(t, zero)
}

func TestKeyValue(t *testing.T) {
	value, err := KeyValue(&taggedEntity{Code: "FR"})
	require.NoError(t, err)
	assert.Equal(t, "FR", value)
}
