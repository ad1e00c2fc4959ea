package core

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// HashmeTagName is the struct tag GetHash consults to decide which fields
// contribute to a value's content hash.
const HashmeTagName = "hash"

// GetHash builds a stable string hash of every field tagged `hash:"true"`
// on t/v, recursing into nested structs. JobDetail.Hash is built on it.
func GetHash(t reflect.Type, v reflect.Value, hash *string) error {
	for field := range t.Fields() {
		fieldv := v.FieldByIndex(field.Index)
		kind := field.Type.Kind()

		if kind == reflect.Struct && field.Type != reflect.TypeFor[time.Duration]() && field.Type != reflect.TypeFor[time.Time]() {
			if err := GetHash(field.Type, fieldv, hash); err != nil {
				return err
			}
			continue
		}

		hashmeTag := field.Tag.Get(HashmeTagName)
		if hashmeTag != "true" {
			continue
		}

		//nolint:exhaustive // reflect.Kind has many values; only relevant kinds are supported for hashing
		switch kind {
		case reflect.String:
			*hash += fieldv.String()
		case reflect.Int32, reflect.Int, reflect.Int64, reflect.Int16, reflect.Int8:
			*hash += strconv.FormatInt(fieldv.Int(), 10)
		case reflect.Bool:
			*hash += strconv.FormatBool(fieldv.Bool())
		case reflect.Slice:
			if field.Type.Elem().Kind() != reflect.String {
				return ErrUnsupportedFieldType
			}
			strs, ok := fieldv.Interface().([]string)
			if !ok {
				return ErrUnsupportedFieldType
			}
			for _, str := range strs {
				*hash += fmt.Sprintf("%d:%s,", len(str), str)
			}
		case reflect.Map:
			// JobDataMap and similar string-keyed maps: hash key/value pairs
			// in a stable, sorted order.
			if field.Type.Key().Kind() != reflect.String {
				return ErrUnsupportedFieldType
			}
			keys := fieldv.MapKeys()
			sortMapKeys(keys)
			for _, k := range keys {
				*hash += fmt.Sprintf("%s=%v,", k.String(), fieldv.MapIndex(k).Interface())
			}
		case reflect.Pointer:
			if fieldv.IsNil() {
				*hash += "<nil>"
				continue
			}
			elem := fieldv.Elem()
			if elem.Kind() == reflect.String {
				*hash += elem.String()
				continue
			}
			return fmt.Errorf("%w: field '%s' of type '%s'", ErrUnsupportedFieldType, field.Name, field.Type)
		default:
			return fmt.Errorf("%w: field '%s' of type '%s'", ErrUnsupportedFieldType, field.Name, field.Type)
		}
	}

	return nil
}

func sortMapKeys(keys []reflect.Value) {
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j].String() < keys[j-1].String(); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}
