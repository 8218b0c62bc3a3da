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
	"fmt"
	"reflect"
	"strings"
	"time"
)

const (
	tagRevisionNumber    = "revision_number"
	tagRevisionTimestamp = "revision_timestamp"
)

// RevisionInformation describes a configured revision entity: which Go type
// backs it, the type of its revision number, and how to read and prepare
// instances. Resolved once at factory construction and reused afterwards.
type RevisionInformation interface {
	// RevisionNumberType is the Go type of the revision number field.
	RevisionNumberType() reflect.Type

	// Model returns a typed nil pointer usable for table creation and
	// model registration.
	Model() interface{}

	// NewInstance returns a fresh pointer instance ready for insertion.
	NewInstance() interface{}

	// RevisionNumber extracts the revision number from an instance that has
	// been inserted (its autoincrement key populated).
	RevisionNumber(instance interface{}) (int64, error)

	// Prepare stamps the instance's revision timestamp, when it has one.
	Prepare(instance interface{}, at time.Time)

	// Default reports whether this is the built-in revision entity.
	Default() bool
}

// defaultRevisionInformation is the static resolver for DefaultRevision.
type defaultRevisionInformation struct{}

// DefaultRevisionInformation returns metadata for the built-in revision
// entity without any reflection walk.
func DefaultRevisionInformation() RevisionInformation {
	return defaultRevisionInformation{}
}

func (defaultRevisionInformation) RevisionNumberType() reflect.Type {
	return reflect.TypeOf(int64(0))
}

func (defaultRevisionInformation) Model() interface{} { return (*DefaultRevision)(nil) }

func (defaultRevisionInformation) NewInstance() interface{} { return &DefaultRevision{} }

func (defaultRevisionInformation) RevisionNumber(instance interface{}) (int64, error) {
	rev, ok := instance.(*DefaultRevision)
	if !ok {
		return 0, fmt.Errorf("expected *audit.DefaultRevision, got %T", instance)
	}
	return rev.ID, nil
}

func (defaultRevisionInformation) Prepare(instance interface{}, at time.Time) {
	if rev, ok := instance.(*DefaultRevision); ok {
		rev.CreatedAt = at
	}
}

func (defaultRevisionInformation) Default() bool { return true }

// reflectionRevisionInformation resolves a user-supplied revision entity by
// scanning its struct tags.
type reflectionRevisionInformation struct {
	typ            reflect.Type
	numberField    int
	timestampField int // -1 when the entity has no timestamp field
}

// NewRevisionInformation builds metadata for a custom revision entity. The
// model must be a struct (or pointer to struct) with a field tagged
// `audit:"revision_number"`; a field tagged `audit:"revision_timestamp"` is
// optional. The revision number field must be a signed integer.
func NewRevisionInformation(model interface{}) (RevisionInformation, error) {
	if model == nil {
		return DefaultRevisionInformation(), nil
	}
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == reflect.TypeOf(DefaultRevision{}) {
		return DefaultRevisionInformation(), nil
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("revision entity must be a struct, got %s", typ.Kind())
	}

	info := &reflectionRevisionInformation{typ: typ, numberField: -1, timestampField: -1}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		switch auditTag(field) {
		case tagRevisionNumber:
			switch field.Type.Kind() {
			case reflect.Int, reflect.Int32, reflect.Int64:
			default:
				return nil, fmt.Errorf("revision number field %s.%s must be a signed integer, got %s",
					typ.Name(), field.Name, field.Type)
			}
			info.numberField = i
		case tagRevisionTimestamp:
			if field.Type != reflect.TypeOf(time.Time{}) {
				return nil, fmt.Errorf("revision timestamp field %s.%s must be time.Time, got %s",
					typ.Name(), field.Name, field.Type)
			}
			info.timestampField = i
		}
	}
	if info.numberField < 0 {
		return nil, fmt.Errorf("revision entity %s has no field tagged audit:%q", typ.Name(), tagRevisionNumber)
	}
	return info, nil
}

func auditTag(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("audit")
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.Split(tag, ",")[0])
}

func (info *reflectionRevisionInformation) RevisionNumberType() reflect.Type {
	return info.typ.Field(info.numberField).Type
}

func (info *reflectionRevisionInformation) Model() interface{} {
	return reflect.New(reflect.PointerTo(info.typ)).Elem().Interface()
}

func (info *reflectionRevisionInformation) NewInstance() interface{} {
	return reflect.New(info.typ).Interface()
}

func (info *reflectionRevisionInformation) RevisionNumber(instance interface{}) (int64, error) {
	val := reflect.ValueOf(instance)
	for val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Type() != info.typ {
		return 0, fmt.Errorf("expected revision entity %s, got %T", info.typ.Name(), instance)
	}
	return val.Field(info.numberField).Int(), nil
}

func (info *reflectionRevisionInformation) Prepare(instance interface{}, at time.Time) {
	if info.timestampField < 0 {
		return
	}
	val := reflect.ValueOf(instance)
	for val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Type() != info.typ || !val.Field(info.timestampField).CanSet() {
		return
	}
	val.Field(info.timestampField).Set(reflect.ValueOf(at))
}

func (info *reflectionRevisionInformation) Default() bool { return false }
