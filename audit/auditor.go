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
	"context"
	"fmt"
	"time"

	"github.com/tomoncle/relic/types"
	"github.com/uptrace/bun"
)

// Auditor records and reads entity revisions. Recording always happens on
// the caller's bun.IDB so that the entity write and its revision land in
// the same transaction. The revision-number sequence is owned by the
// configured revision entity's autoincrement key.
type Auditor struct {
	info RevisionInformation
}

// NewAuditor returns an auditor bound to resolved revision-entity metadata.
func NewAuditor(info RevisionInformation) *Auditor {
	if info == nil {
		info = DefaultRevisionInformation()
	}
	return &Auditor{info: info}
}

// Information exposes the resolved revision-entity metadata.
func (a *Auditor) Information() RevisionInformation { return a.info }

// Record inserts one revision entity row and one entity snapshot row for the
// given change, returning the stored snapshot row with its revision number.
func (a *Auditor) Record(ctx context.Context, db bun.IDB, op RevisionType, entity interface{}) (*EntityRevision, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("invalid revision type %d", op.Number())
	}
	key, err := EntityKey(entity)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rev := a.info.NewInstance()
	a.info.Prepare(rev, now)
	if _, err := db.NewInsert().Model(rev).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert revision entity: %w", err)
	}
	number, err := a.info.RevisionNumber(rev)
	if err != nil {
		return nil, err
	}

	snapshot, err := types.NewJsonObject(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot entity %s: %w", EntityName(entity), err)
	}

	entry := &EntityRevision{
		RevisionID: number,
		EntityName: EntityName(entity),
		EntityID:   key,
		Operation:  op.Number(),
		Snapshot:   snapshot,
		RecordedAt: now,
	}
	if _, err := db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert entity revision: %w", err)
	}
	return entry, nil
}

// Revisions returns all captured revisions of one entity in ascending
// revision-number order.
func (a *Auditor) Revisions(ctx context.Context, db bun.IDB, entityName, entityID string) ([]*EntityRevision, error) {
	var entries []*EntityRevision
	err := db.NewSelect().
		Model(&entries).
		Where("entity_name = ?", entityName).
		Where("entity_id = ?", entityID).
		Order("revision_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CountRevisions returns how many revisions of one entity were captured.
func (a *Auditor) CountRevisions(ctx context.Context, db bun.IDB, entityName, entityID string) (int, error) {
	return db.NewSelect().
		Model((*EntityRevision)(nil)).
		Where("entity_name = ?", entityName).
		Where("entity_id = ?", entityID).
		Count(ctx)
}

// RevisionsRange returns a window of an entity's revisions in ascending
// revision-number order.
func (a *Auditor) RevisionsRange(ctx context.Context, db bun.IDB, entityName, entityID string, offset, limit int) ([]*EntityRevision, error) {
	var entries []*EntityRevision
	err := db.NewSelect().
		Model(&entries).
		Where("entity_name = ?", entityName).
		Where("entity_id = ?", entityID).
		Order("revision_id ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Revision returns the captured revision of one entity at a specific
// revision number.
func (a *Auditor) Revision(ctx context.Context, db bun.IDB, entityName, entityID string, number int64) (*EntityRevision, error) {
	entry := new(EntityRevision)
	err := db.NewSelect().
		Model(entry).
		Where("entity_name = ?", entityName).
		Where("entity_id = ?", entityID).
		Where("revision_id = ?", number).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// LastRevision returns the most recent captured revision of one entity.
func (a *Auditor) LastRevision(ctx context.Context, db bun.IDB, entityName, entityID string) (*EntityRevision, error) {
	entry := new(EntityRevision)
	err := db.NewSelect().
		Model(entry).
		Where("entity_name = ?", entityName).
		Where("entity_id = ?", entityID).
		Order("revision_id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entry, nil
}
