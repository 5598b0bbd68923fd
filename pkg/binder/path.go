package binder

import (
	"fmt"
	"net/http"
	"reflect"
)

// Path creates a path parameter binder function using the provided extractor.
// Fields are matched by their `path:"name"` tag; `path:"-"` skips a field.
// Fields without a value in the route are left untouched.
//
// Example with chi router:
//
//	type ChallengeRequest struct {
//		ID uuid.UUID `path:"id" json:"-"`
//	}
//
//	r.Get("/auth/challenge/{id}", handler.Wrap(getChallenge,
//		handler.WithBinders[handler.Context, ChallengeRequest](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, key string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrFailedToParsePath)
		}
		return bindTagged(r, v, "path", extractor, ErrFailedToParsePath)
	}
}

// Query binds fields tagged with `query:"name"` from the URL query string.
// The first value of a repeated parameter wins.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindTagged(r, v, "query", func(_ *http.Request, key string) string {
			return q.Get(key)
		}, ErrFailedToParseQuery)
	}
}

func bindTagged(r *http.Request, v any, tag string, extract func(*http.Request, string) string, failure error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer", failure)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("%w: target must be a pointer to struct", failure)
	}

	rt := rv.Type()
	for i := range rv.NumField() {
		field := rv.Field(i)
		fieldType := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		name, ok := fieldType.Tag.Lookup(tag)
		if !ok || name == "-" {
			continue
		}

		value := extract(r, name)
		if value == "" {
			continue
		}

		if err := setFieldValue(field, fieldType.Type, value); err != nil {
			return fmt.Errorf("%w: field %s: %v", failure, fieldType.Name, err)
		}
	}

	return nil
}
