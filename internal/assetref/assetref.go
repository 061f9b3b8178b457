// Package assetref marks string fields that hold weak references to asset
// bundles and lets tooling find them.
//
// A field opts in with the asset struct tag:
//
//	type Panel struct {
//	    Background string   `asset:"bundle"`
//	    Icons      []string `asset:"bundle,optional"`
//	}
//
// The tag carries no runtime behavior of its own. Resolving bundles is the
// host's business; Scan only reports where the references are.
package assetref

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/Iron-Ham/viewkit/internal/errors"
)

// TagName is the struct tag key recognised by Scan.
const TagName = "asset"

// KindBundle is the only reference kind currently defined.
const KindBundle = "bundle"

// Ref is one asset reference found in a value.
type Ref struct {
	// Path is the dotted Go field path, with [i] for slice elements.
	Path     string
	Kind     string
	Bundle   string
	Optional bool
}

// Scan walks v, which must be a struct or a pointer to one, and returns
// every tagged reference in field order. Nested structs, pointers to structs
// and slices of structs are followed.
func Scan(v any) ([]Ref, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.NewValidationError("cannot scan a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, errors.NewValidationError("asset references can only be scanned on structs").
			WithValue(rv.Kind().String())
	}

	var refs []Ref
	if err := scanStruct(rv, rv.Type().Name(), &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func scanStruct(rv reflect.Value, prefix string, refs *[]Ref) error {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		fv := rv.Field(i)

		tag, tagged := field.Tag.Lookup(TagName)
		if !tagged {
			if err := descend(fv, path, refs); err != nil {
				return err
			}
			continue
		}

		kind, optional, err := parseTag(tag)
		if err != nil {
			return errors.Wrapf(err, "field %s", path)
		}
		switch {
		case fv.Kind() == reflect.String:
			*refs = append(*refs, Ref{Path: path, Kind: kind, Bundle: fv.String(), Optional: optional})
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
			for j := 0; j < fv.Len(); j++ {
				*refs = append(*refs, Ref{
					Path:     fmt.Sprintf("%s[%d]", path, j),
					Kind:     kind,
					Bundle:   fv.Index(j).String(),
					Optional: optional,
				})
			}
		default:
			return errors.NewValidationError("asset tag is only valid on string fields").
				WithField(path).
				WithValue(fv.Type().String())
		}
	}
	return nil
}

func descend(fv reflect.Value, path string, refs *[]Ref) error {
	switch fv.Kind() {
	case reflect.Struct:
		return scanStruct(fv, path, refs)
	case reflect.Pointer:
		if !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
			return scanStruct(fv.Elem(), path, refs)
		}
	case reflect.Slice:
		elem := fv.Type().Elem()
		if elem.Kind() == reflect.Struct || (elem.Kind() == reflect.Pointer && elem.Elem().Kind() == reflect.Struct) {
			for j := 0; j < fv.Len(); j++ {
				if err := descend(fv.Index(j), fmt.Sprintf("%s[%d]", path, j), refs); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func parseTag(tag string) (kind string, optional bool, err error) {
	parts := strings.Split(tag, ",")
	kind = strings.TrimSpace(parts[0])
	if kind != KindBundle {
		return "", false, errors.NewValidationError("unknown asset reference kind").WithValue(kind)
	}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "optional":
			optional = true
		case "":
		default:
			return "", false, errors.NewValidationError("unknown asset tag option").WithValue(opt)
		}
	}
	return kind, optional, nil
}

// Validate returns an error listing every required reference left empty.
func Validate(refs []Ref) error {
	var errs []error
	for _, r := range refs {
		if r.Bundle == "" && !r.Optional {
			errs = append(errs, errors.NewValidationError("asset bundle reference is empty").WithField(r.Path))
		}
	}
	return errors.Join(errs...)
}

// Bundles returns the distinct non-empty bundle names in refs, sorted.
func Bundles(refs []Ref) []string {
	var names []string
	for _, r := range refs {
		if r.Bundle != "" {
			names = append(names, r.Bundle)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
