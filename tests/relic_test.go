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

package tests

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/tomoncle/relic"
	"github.com/tomoncle/relic/audit"
	"github.com/tomoncle/relic/database"
	"github.com/tomoncle/relic/predicate"
	"github.com/tomoncle/relic/repository"
	"github.com/tomoncle/relic/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type Country struct {
	bun.BaseModel `bun:"table:countries,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Code string `bun:"code,notnull" json:"code"`
	Name string `bun:"name,notnull" json:"name"`
}

var countries repository.RevisionQueryRepository[Country, int64, int64]

func TestMain(m *testing.M) {
	cfg := &database.Config{
		ConnectionConfig: database.ConnectionConfig{
			Type:   "sqlite",
			DBName: ":memory:",
		},
	}
	if _, err := database.InitDB(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init database error: %v\n", err)
		os.Exit(1)
	}

	database.RegisteredModel(database.NewModelAdapter((*Country)(nil), 0))

	factory, err := repository.NewRevisionRepositoryFactory(database.GetDB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "revision repository factory error: %v\n", err)
		os.Exit(1)
	}
	countries, err = repository.NewRevisionQueryRepository[Country, int64, int64](factory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "revision repository error: %v\n", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(); err != nil {
		fmt.Fprintf(os.Stderr, "run migrations error: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

func TestSaveTracksChangeHistory(t *testing.T) {
	ctx := context.Background()

	country := &Country{Code: "DE", Name: "Deutschland"}
	require.NoError(t, countries.Save(ctx, country))
	require.NotZero(t, country.ID)

	found, err := countries.FindOneBy(ctx, predicate.Eq("name", "Deutschland"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, country.ID, found.ID)

	country.Name = "Germany"
	require.NoError(t, countries.Save(ctx, country))

	revisions, err := countries.FindRevisions(ctx, country.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)

	assert.Equal(t, audit.RevisionInsert, revisions[0].Type)
	assert.Equal(t, "Deutschland", revisions[0].Entity.Name)
	assert.Equal(t, audit.RevisionUpdate, revisions[1].Type)
	assert.Equal(t, "Germany", revisions[1].Entity.Name)
	assert.Less(t, revisions[0].Number, revisions[1].Number)

	first, err := countries.FindRevision(ctx, country.ID, revisions[0].Number)
	require.NoError(t, err)
	assert.Equal(t, "Deutschland", first.Entity.Name)
	assert.Equal(t, "DE", first.Entity.Code)

	last, err := countries.FindLastChangeRevision(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, revisions[1].Number, last.Number)
	assert.Equal(t, "Germany", last.Entity.Name)
}

func TestDeleteRecordsTerminalRevision(t *testing.T) {
	ctx := context.Background()

	country := &Country{Code: "SU", Name: "Soviet Union"}
	require.NoError(t, countries.Save(ctx, country))
	require.NoError(t, countries.Delete(ctx, country.ID))

	_, err := countries.FindOne(ctx, country.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	revisions, err := countries.FindRevisions(ctx, country.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, audit.RevisionDelete, revisions[1].Type)

	// The delete revision keeps the entity's last state.
	assert.Equal(t, "Soviet Union", revisions[1].Entity.Name)

	last := revisions.Latest()
	require.NotNil(t, last)
	assert.Equal(t, audit.RevisionDelete, last.Type)
}

func TestDeleteMissingEntity(t *testing.T) {
	err := countries.Delete(context.Background(), 987654)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFindRevisionMissing(t *testing.T) {
	ctx := context.Background()

	country := &Country{Code: "FR", Name: "France"}
	require.NoError(t, countries.Save(ctx, country))

	_, err := countries.FindRevision(ctx, country.ID, 987654)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = countries.FindLastChangeRevision(ctx, 987654)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPredicateQueries(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, countries.Save(ctx, &Country{Code: "NL", Name: "Netherlands"}))
	require.NoError(t, countries.Save(ctx, &Country{Code: "NO", Name: "Norway"}))

	matches, err := countries.FindAllBy(ctx, predicate.Like("code", "N%"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(matches), 2)

	count, err := countries.CountBy(ctx, predicate.In("code", "NL", "NO"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	exists, err := countries.ExistsBy(ctx, predicate.Eq("code", "NL"))
	require.NoError(t, err)
	assert.True(t, exists)

	missing, err := countries.FindOneBy(ctx, predicate.Eq("name", "Atlantis"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = countries.FindOneBy(ctx, predicate.In("code", "NL", "NO"))
	assert.ErrorIs(t, err, repository.ErrNonUniqueResult)
}

func TestFindRevisionsPage(t *testing.T) {
	ctx := context.Background()

	country := &Country{Code: "IT", Name: "Italia"}
	require.NoError(t, countries.Save(ctx, country))
	country.Name = "Italian Republic"
	require.NoError(t, countries.Save(ctx, country))
	country.Name = "Italy"
	require.NoError(t, countries.Save(ctx, country))

	page, err := countries.FindRevisionsPage(ctx, country.ID, types.NewDefaultPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Italia", page.Items[0].Entity.Name)
	assert.True(t, page.HasNext())

	page, err = countries.FindRevisionsPage(ctx, country.ID, types.NewDefaultPageRequest(2, 2))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Italy", page.Items[0].Entity.Name)
	assert.False(t, page.HasNext())

	empty, err := countries.FindRevisionsPage(ctx, 987654, types.NewDefaultPageRequest(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Items)
}

func TestAuditedService(t *testing.T) {
	ctx := context.Background()
	svc := relic.NewAuditedService[Country, int64, int64]()

	country := &Country{Code: "JP", Name: "Nippon"}
	require.NoError(t, svc.Save(ctx, country))

	country.Name = "Japan"
	require.NoError(t, svc.Save(ctx, country))

	got, err := svc.Get(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, "Japan", got.Name)

	revisions, err := svc.Revisions(ctx, country.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, "Nippon", revisions[0].Entity.Name)

	last, err := svc.LastChangeRevision(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, "Japan", last.Entity.Name)
}

type City struct {
	bun.BaseModel `bun:"table:cities,alias:ci"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

type compactRevision struct {
	bun.BaseModel `bun:"table:compact_revisions,alias:crev"`

	ID        int32     `bun:"id,pk,autoincrement" audit:"revision_number"`
	CreatedAt time.Time `bun:"created_at,notnull" audit:"revision_timestamp"`
}

func TestCustomRevisionEntityRegisteredAfterStartup(t *testing.T) {
	ctx := context.Background()

	database.RegisteredModel(database.NewModelAdapter((*City)(nil), 0))

	factory, err := repository.NewRevisionRepositoryFactory(database.GetDB(),
		repository.WithRevisionEntity((*compactRevision)(nil)))
	require.NoError(t, err)

	var mismatch *repository.RevisionTypeMismatchError
	_, err = repository.NewRevisionRepository[City, int64, int64](factory)
	require.ErrorAs(t, err, &mismatch)

	cities, err := repository.NewRevisionRepository[City, int64, int32](factory)
	require.NoError(t, err)

	// The model and its revision entity arrived after the startup
	// migrations; rerunning creates the missing tables.
	require.NoError(t, database.RunMigrations())

	city := &City{Name: "Lyon"}
	require.NoError(t, cities.Save(ctx, city))
	require.NotZero(t, city.ID)

	city.Name = "Grand Lyon"
	require.NoError(t, cities.Save(ctx, city))

	revisions, err := cities.FindRevisions(ctx, city.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, audit.RevisionInsert, revisions[0].Type)
	assert.Equal(t, "Lyon", revisions[0].Entity.Name)
	assert.Equal(t, audit.RevisionUpdate, revisions[1].Type)
	assert.Equal(t, "Grand Lyon", revisions[1].Entity.Name)
	assert.Less(t, revisions[0].Number, revisions[1].Number)
	assert.False(t, revisions[1].Timestamp.IsZero())
}
