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
	"strings"

	"github.com/tomoncle/relic/types"
	"github.com/uptrace/bun"
)

// Predicate is a composable filter expression. Expr returns a Bun-style
// placeholder clause and its arguments; composites group their children in
// parentheses so nesting keeps its meaning.
type Predicate interface {
	Expr() (string, []interface{})
}

// Compile converts a predicate into the QueryFilter consumed by the
// repository layer. A nil predicate compiles to nil (no filtering).
func Compile(p Predicate) *types.QueryFilter {
	if p == nil {
		return nil
	}
	schema, args := p.Expr()
	return types.NewQueryFilter(schema, args...)
}

type comparison struct {
	column   string
	operator string
	value    interface{}
}

func (c comparison) Expr() (string, []interface{}) {
	return "? " + c.operator + " ?", []interface{}{bun.Ident(c.column), c.value}
}

// Eq matches rows whose column equals value.
func Eq(column string, value interface{}) Predicate {
	return comparison{column: column, operator: "=", value: value}
}

// Ne matches rows whose column does not equal value.
func Ne(column string, value interface{}) Predicate {
	return comparison{column: column, operator: "<>", value: value}
}

// Gt matches rows whose column is greater than value.
func Gt(column string, value interface{}) Predicate {
	return comparison{column: column, operator: ">", value: value}
}

// Gte matches rows whose column is greater than or equal to value.
func Gte(column string, value interface{}) Predicate {
	return comparison{column: column, operator: ">=", value: value}
}

// Lt matches rows whose column is less than value.
func Lt(column string, value interface{}) Predicate {
	return comparison{column: column, operator: "<", value: value}
}

// Lte matches rows whose column is less than or equal to value.
func Lte(column string, value interface{}) Predicate {
	return comparison{column: column, operator: "<=", value: value}
}

// Like matches rows whose column matches the SQL LIKE pattern.
func Like(column string, pattern string) Predicate {
	return comparison{column: column, operator: "LIKE", value: pattern}
}

type in struct {
	column string
	values []interface{}
}

func (p in) Expr() (string, []interface{}) {
	if len(p.values) == 0 {
		// IN over no values matches nothing; "IN ()" is invalid SQL.
		return "1 = 0", nil
	}
	return "? IN (?)", []interface{}{bun.Ident(p.column), bun.In(p.values)}
}

// In matches rows whose column equals any of the given values. With no
// values it matches no rows.
func In(column string, values ...interface{}) Predicate {
	return in{column: column, values: values}
}

type isNull struct {
	column string
}

func (p isNull) Expr() (string, []interface{}) {
	return "? IS NULL", []interface{}{bun.Ident(p.column)}
}

// IsNull matches rows whose column is NULL.
func IsNull(column string) Predicate {
	return isNull{column: column}
}

type junction struct {
	operator string
	children []Predicate
}

func (j junction) Expr() (string, []interface{}) {
	if len(j.children) == 0 {
		return "1 = 1", nil
	}
	if len(j.children) == 1 {
		return j.children[0].Expr()
	}
	clauses := make([]string, 0, len(j.children))
	var args []interface{}
	for _, child := range j.children {
		clause, childArgs := child.Expr()
		clauses = append(clauses, clause)
		args = append(args, childArgs...)
	}
	return "(" + strings.Join(clauses, " "+j.operator+" ") + ")", args
}

// And matches rows satisfying every child predicate.
func And(children ...Predicate) Predicate {
	return junction{operator: "AND", children: children}
}

// Or matches rows satisfying at least one child predicate.
func Or(children ...Predicate) Predicate {
	return junction{operator: "OR", children: children}
}

type not struct {
	child Predicate
}

func (n not) Expr() (string, []interface{}) {
	clause, args := n.child.Expr()
	return "NOT (" + clause + ")", args
}

// Not inverts a predicate.
func Not(child Predicate) Predicate {
	return not{child: child}
}
