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
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/tomoncle/relic/database"
)

var (
	// ErrNotFound marks lookups for entities or revisions that do not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateKey marks writes rejected by a unique constraint.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNonUniqueResult marks single-result queries that matched more than
	// one row.
	ErrNonUniqueResult = errors.New("query returned more than one result")
)

// RevisionTypeMismatchError reports a repository whose declared
// revision-number type parameter disagrees with the configured revision
// entity. Raised once at repository construction, before any data access.
type RevisionTypeMismatchError struct {
	Repository     string
	ConfiguredType reflect.Type
	DeclaredType   reflect.Type
}

func (e *RevisionTypeMismatchError) Error() string {
	return fmt.Sprintf(
		"configured a revision entity with revision number type %s but repository %s is typed to revision number type %s",
		e.ConfiguredType, e.Repository, e.DeclaredType)
}

// wrapDBError converts driver level failures into the repository sentinels
// callers are expected to branch on.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if is, kind := database.IsSqlError(err); is && kind == database.DuplicateKeyErr {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
