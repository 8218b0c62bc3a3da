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

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFromConfigAppliesPoolDefaults(t *testing.T) {
	factory := NewDatabaseFactory()
	cfg := &ConnectionConfig{Type: "sqlite", DBName: ":memory:"}

	manager, err := factory.CreateFromConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, manager)

	defaults := DefaultConnectionConfig()
	assert.Equal(t, defaults.MaxIdleConns, cfg.MaxIdleConns)
	assert.Equal(t, defaults.MaxOpenConns, cfg.MaxOpenConns)
	assert.Equal(t, defaults.ConnMaxLifetime, cfg.ConnMaxLifetime)
	assert.Equal(t, defaults.ConnMaxIdleTime, cfg.ConnMaxIdleTime)
	assert.Equal(t, defaults.ConnectTimeout, cfg.ConnectTimeout)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &ConnectionConfig{
		Type:            "sqlite",
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Minute,
	}
	cfg.applyDefaults()

	assert.Equal(t, 5, cfg.MaxOpenConns)
	assert.Equal(t, time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, DefaultConnectionConfig().MaxIdleConns, cfg.MaxIdleConns)
}

func TestCreateFromConfigRejectsUnknownType(t *testing.T) {
	factory := NewDatabaseFactory()
	_, err := factory.CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}
