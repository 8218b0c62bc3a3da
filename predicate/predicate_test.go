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

package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestComparisonExpr(t *testing.T) {
	clause, args := Eq("name", "Deutschland").Expr()
	assert.Equal(t, "? = ?", clause)
	require.Len(t, args, 2)
	assert.Equal(t, bun.Ident("name"), args[0])
	assert.Equal(t, "Deutschland", args[1])

	clause, _ = Ne("code", "DE").Expr()
	assert.Equal(t, "? <> ?", clause)

	clause, _ = Gt("population", 1000).Expr()
	assert.Equal(t, "? > ?", clause)

	clause, _ = Lte("population", 1000).Expr()
	assert.Equal(t, "? <= ?", clause)

	clause, args = Like("name", "Ger%").Expr()
	assert.Equal(t, "? LIKE ?", clause)
	assert.Equal(t, "Ger%", args[1])
}

func TestInExpr(t *testing.T) {
	clause, args := In("code", "DE", "FR").Expr()
	assert.Equal(t, "? IN (?)", clause)
	require.Len(t, args, 2)
	assert.Equal(t, bun.Ident("code"), args[0])
}

func TestInExprEmpty(t *testing.T) {
	clause, args := In("code").Expr()
	assert.Equal(t, "1 = 0", clause)
	assert.Empty(t, args)
}

func TestIsNullExpr(t *testing.T) {
	clause, args := IsNull("deleted_at").Expr()
	assert.Equal(t, "? IS NULL", clause)
	assert.Equal(t, []interface{}{bun.Ident("deleted_at")}, args)
}

func TestJunctionExpr(t *testing.T) {
	clause, args := And(Eq("code", "DE"), Gt("population", 1000)).Expr()
	assert.Equal(t, "(? = ? AND ? > ?)", clause)
	assert.Len(t, args, 4)

	clause, _ = Or(Eq("code", "DE"), Eq("code", "FR")).Expr()
	assert.Equal(t, "(? = ? OR ? = ?)", clause)

	// A single child needs no grouping.
	clause, _ = And(Eq("code", "DE")).Expr()
	assert.Equal(t, "? = ?", clause)

	// An empty junction filters nothing out.
	clause, args = And().Expr()
	assert.Equal(t, "1 = 1", clause)
	assert.Nil(t, args)
}

func TestNestedExpr(t *testing.T) {
	p := And(
		Eq("code", "DE"),
		Or(Like("name", "Ger%"), Like("name", "Deu%")),
	)
	clause, args := p.Expr()
	assert.Equal(t, "(? = ? AND (? LIKE ? OR ? LIKE ?))", clause)
	assert.Len(t, args, 6)
}

func TestNotExpr(t *testing.T) {
	clause, args := Not(Eq("code", "DE")).Expr()
	assert.Equal(t, "NOT (? = ?)", clause)
	assert.Len(t, args, 2)
}

func TestCompile(t *testing.T) {
	assert.Nil(t, Compile(nil))

	filter := Compile(Eq("name", "Germany"))
	require.NotNil(t, filter)
	assert.Equal(t, "? = ?", filter.Schema)
	assert.Len(t, filter.Args, 2)
}
