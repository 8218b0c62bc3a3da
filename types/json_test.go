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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonObjectRoundTrip(t *testing.T) {
	type payload struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}

	obj, err := NewJsonObject(payload{Code: "DE", Name: "Deutschland"})
	require.NoError(t, err)
	assert.Equal(t, "DE", obj["code"])

	var decoded payload
	require.NoError(t, obj.Decode(&decoded))
	assert.Equal(t, "Deutschland", decoded.Name)
}

func TestJsonObjectScan(t *testing.T) {
	var obj JsonObject
	require.NoError(t, obj.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, float64(1), obj["a"])

	var fromString JsonObject
	require.NoError(t, fromString.Scan(`{"b":"x"}`))
	assert.Equal(t, "x", fromString["b"])

	var fromNil JsonObject
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)
}
