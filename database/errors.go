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
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLError classifies driver failures on the write path so callers can map
// them to their own sentinels without matching driver-specific types.
type SQLError int

const (
	UnknownErr SQLError = iota
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
)

// IsSqlError classifies an error across the supported drivers. MySQL is
// matched by error number; PostgreSQL and SQLite by SQLSTATE or message,
// since lib/pq and sqliteshim errors reach us flattened into strings.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return true, classifyMySQL(mysqlErr.Number)
	}

	s := strings.ToLower(err.Error())
	if kind, ok := classifyMessage(s); ok {
		return true, kind
	}
	return false, UnknownErr
}

func classifyMySQL(number uint16) SQLError {
	switch number {
	case 1062:
		return DuplicateKeyErr
	case 1048:
		return NotNullViolationErr
	case 1216, 1217, 1451, 1452:
		return ForeignKeyViolationErr
	case 3819:
		return CheckConstraintViolationErr
	case 1265:
		return DataTruncatedErr
	default:
		return UnknownErr
	}
}

func classifyMessage(s string) (SQLError, bool) {
	switch {
	case strings.Contains(s, "sqlstate 23505"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"):
		return DuplicateKeyErr, true
	case strings.Contains(s, "sqlstate 23502"),
		strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"):
		return NotNullViolationErr, true
	case strings.Contains(s, "sqlstate 23503"),
		strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"):
		return ForeignKeyViolationErr, true
	case strings.Contains(s, "sqlstate 23514"),
		strings.Contains(s, "check constraint"):
		return CheckConstraintViolationErr, true
	case strings.Contains(s, "sqlstate 22001"),
		strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "data truncated"):
		return DataTruncatedErr, true
	}
	return UnknownErr, false
}
