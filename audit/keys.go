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
)

// EntityName returns the audit name of an entity type; revisions of the
// same type share one name regardless of pointer depth.
func EntityName(entity interface{}) string {
	typ := reflect.TypeOf(entity)
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil {
		return ""
	}
	return typ.Name()
}

// EntityKey extracts the primary key of an entity as its audit identifier.
// The key field is the first field whose bun tag carries "pk", falling back
// to a field named ID.
func EntityKey(entity interface{}) (string, error) {
	val, err := keyField(entity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v", val.Interface()), nil
}

// KeyValue returns the raw primary key value of an entity.
func KeyValue(entity interface{}) (interface{}, error) {
	val, err := keyField(entity)
	if err != nil {
		return nil, err
	}
	return val.Interface(), nil
}

// HasZeroKey reports whether the entity's primary key is unset, which marks
// it as not yet persisted.
func HasZeroKey(entity interface{}) (bool, error) {
	val, err := keyField(entity)
	if err != nil {
		return false, err
	}
	return val.IsZero(), nil
}

func keyField(entity interface{}) (reflect.Value, error) {
	val := reflect.ValueOf(entity)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return reflect.Value{}, fmt.Errorf("entity is nil")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("entity must be a struct, got %s", val.Kind())
	}

	typ := val.Type()
	fallback := -1
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.Anonymous {
			continue
		}
		if isPrimaryKeyTag(field.Tag.Get("bun")) {
			return val.Field(i), nil
		}
		if fallback < 0 && field.Name == "ID" {
			fallback = i
		}
	}
	if fallback >= 0 {
		return val.Field(fallback), nil
	}
	return reflect.Value{}, fmt.Errorf("entity %s has no primary key field", typ.Name())
}

func isPrimaryKeyTag(tag string) bool {
	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == "pk" {
			return true
		}
	}
	return false
}
