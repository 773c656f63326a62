package envconf

import (
	"encoding"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingRequired = errors.New("missing required environment variable")
	ErrUnsupportedType = errors.New("unsupported field type")
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load fills the exported fields of the struct dst points to from the
// environment. A field is read from the variable named by its `env` tag; a
// `default` tag makes the variable optional (an empty default keeps the zero
// value). Untagged struct fields are loaded recursively. Every missing
// variable is reported, joined into one error.
func Load(dst any) error {
	return LoadFunc(dst, os.LookupEnv)
}

// LookupFunc resolves one variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadFunc is Load with a custom variable source.
func LoadFunc(dst any, lookup LookupFunc) error {
	if dst == nil {
		return errors.New("destination is nil")
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return errors.New("destination must be a non-nil pointer to a struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return errors.New("destination must point to a struct")
	}

	return errors.Join(loadStruct(v, lookup)...)
}

//nolint:gocognit
func loadStruct(v reflect.Value, lookup LookupFunc) []error {
	var errs []error

	t := v.Type()
	for i := range v.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)

		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("env")
		if tag == "-" {
			continue
		}

		if tag == "" {
			switch {
			case fv.Kind() == reflect.Struct && sf.Type != durationType:
				errs = append(errs, loadStruct(fv, lookup)...)
			case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
				if fv.IsNil() {
					fv.Set(reflect.New(fv.Type().Elem()))
				}

				errs = append(errs, loadStruct(fv.Elem(), lookup)...)
			}

			continue
		}

		raw, ok := lookup(tag)
		if !ok {
			def, hasDefault := sf.Tag.Lookup("default")
			if !hasDefault {
				errs = append(errs, fmt.Errorf("%w: %s (field %q)", ErrMissingRequired, tag, sf.Name))
				continue
			}

			if def == "" {
				continue
			}

			raw = def
		}

		err := setValue(fv, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %q for field %q: %w", tag, sf.Name, err))
		}
	}

	return errs
}

//nolint:gocognit,cyclop
func setValue(fv reflect.Value, raw string) error {
	if !fv.CanSet() {
		return fmt.Errorf("field not settable: %w", ErrUnsupportedType)
	}

	if fv.CanAddr() {
		u, ok := fv.Addr().Interface().(encoding.TextUnmarshaler)
		if ok {
			err := u.UnmarshalText([]byte(raw))
			if err != nil {
				return fmt.Errorf("unmarshal text: %w", err)
			}

			return nil
		}
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)

		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool: %w", err)
		}

		fv.SetBool(b)

		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fv.Type() == durationType {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("parse duration: %w", err)
			}

			fv.SetInt(int64(d))

			return nil
		}

		i, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse int: %w", err)
		}

		fv.SetInt(i)

		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse uint: %w", err)
		}

		fv.SetUint(u)

		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse float: %w", err)
		}

		fv.SetFloat(f)

		return nil
	case reflect.Slice:
		// comma separated, empty items dropped
		parts := strings.Split(raw, ",")
		out := reflect.MakeSlice(fv.Type(), 0, len(parts))

		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}

			elem := reflect.New(fv.Type().Elem()).Elem()

			err := setValue(elem, p)
			if err != nil {
				return fmt.Errorf("parse slice item %q: %w", p, err)
			}

			out = reflect.Append(out, elem)
		}

		fv.Set(out)

		return nil
	case reflect.Pointer:
		elem := reflect.New(fv.Type().Elem())

		err := setValue(elem.Elem(), raw)
		if err != nil {
			return fmt.Errorf("parse pointer: %w", err)
		}

		fv.Set(elem)

		return nil
	default:
		return fmt.Errorf("unsupported type: %w", ErrUnsupportedType)
	}
}
