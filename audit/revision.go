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
	"time"

	"github.com/tomoncle/relic/types"
	"github.com/uptrace/bun"
)

// DefaultRevision is the built-in revision entity. Its autoincrement key is
// the revision number, so revision numbers increase monotonically per change.
type DefaultRevision struct {
	bun.BaseModel `bun:"table:audit_revisions,alias:rev"`

	ID        int64     `bun:"id,pk,autoincrement" audit:"revision_number" json:"id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" audit:"revision_timestamp" json:"created_at"`
}

// EntityRevision stores one captured change of one entity: which revision it
// belongs to, which entity changed, how it changed, and its state snapshot.
type EntityRevision struct {
	bun.BaseModel `bun:"table:audit_entity_revisions,alias:er"`

	ID         int64            `bun:"id,pk,autoincrement" json:"id"`
	RevisionID int64            `bun:"revision_id,notnull" json:"revision_id"`
	EntityName string           `bun:"entity_name,notnull" json:"entity_name"`
	EntityID   string           `bun:"entity_id,notnull" json:"entity_id"`
	Operation  int              `bun:"operation,notnull" json:"operation"`
	Snapshot   types.JsonObject `bun:"snapshot" json:"snapshot"`
	RecordedAt time.Time        `bun:"recorded_at,nullzero,notnull,default:current_timestamp" json:"recorded_at"`
}

// RevisionType returns the typed change operation of this revision row.
func (er *EntityRevision) RevisionType() RevisionType {
	return RevisionType(er.Operation)
}

// DecodeSnapshot unmarshals the stored entity state into target.
func (er *EntityRevision) DecodeSnapshot(target interface{}) error {
	return er.Snapshot.Decode(target)
}

// RevisionType classifies how an entity changed at a revision.
type RevisionType int

const (
	RevisionInsert RevisionType = iota
	RevisionUpdate
	RevisionDelete
)

var _ types.BaseEnum = RevisionInsert

func (t RevisionType) IsValid() bool {
	return t >= RevisionInsert && t <= RevisionDelete
}

func (t RevisionType) Number() int { return int(t) }

func (t RevisionType) Name() string {
	switch t {
	case RevisionInsert:
		return "INSERT"
	case RevisionUpdate:
		return "UPDATE"
	case RevisionDelete:
		return "DELETE"
	default:
		return types.IllegalName
	}
}

func (t RevisionType) String() string { return t.Name() }

func (t RevisionType) Desc() string {
	switch t {
	case RevisionInsert:
		return "entity created"
	case RevisionUpdate:
		return "entity modified"
	case RevisionDelete:
		return "entity removed"
	default:
		return types.IllegalDesc
	}
}

// ParseRevisionType converts a stored operation number back into a
// RevisionType, returning IllegalValue for unknown numbers.
func ParseRevisionType(number int) RevisionType {
	t := RevisionType(number)
	if !t.IsValid() {
		return RevisionType(types.IllegalValue)
	}
	return t
}

// Models returns the audit models that must exist in the database for the
// given revision entity configuration, in creation order.
func Models(info RevisionInformation) []interface{} {
	return []interface{}{info.Model(), (*EntityRevision)(nil)}
}
