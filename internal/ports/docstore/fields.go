package docstore

import (
	"fmt"
	"time"
)

// Fields es el mapa plano nombre -> valor etiquetado de un documento.
type Fields map[string]Value

// String es lenient: "" si falta o es null. Error si el tipo no coincide.
func (f Fields) String(key string) (string, error) {
	v, ok := f[key]
	if !ok || v.IsNull() {
		return "", nil
	}
	if v.Kind() != KindString {
		return "", typeError(key, KindString, v.Kind())
	}
	return v.Str(), nil
}

// RequireString exige que el campo exista y sea string no vacío.
func (f Fields) RequireString(key string) (string, error) {
	s, err := f.String(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("field %q is required", key)
	}
	return s, nil
}

func (f Fields) Bool(key string) (bool, error) {
	v, ok := f[key]
	if !ok || v.IsNull() {
		return false, nil
	}
	if v.Kind() != KindBool {
		return false, typeError(key, KindBool, v.Kind())
	}
	return v.Boolean(), nil
}

func (f Fields) Int(key string) (int64, error) {
	v, ok := f[key]
	if !ok || v.IsNull() {
		return 0, nil
	}
	if v.Kind() != KindInteger {
		return 0, typeError(key, KindInteger, v.Kind())
	}
	return v.Int(), nil
}

// Time devuelve nil si el campo falta o es null.
func (f Fields) Time(key string) (*time.Time, error) {
	v, ok := f[key]
	if !ok || v.IsNull() {
		return nil, nil
	}
	if v.Kind() != KindTimestamp {
		return nil, typeError(key, KindTimestamp, v.Kind())
	}
	t := v.Time()
	return &t, nil
}

func (f Fields) Strings(key string) ([]string, error) {
	items, err := f.array(key)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		if it.Kind() != KindString {
			return nil, typeError(fmt.Sprintf("%s[%d]", key, i), KindString, it.Kind())
		}
		out = append(out, it.Str())
	}
	return out, nil
}

func (f Fields) Ints(key string) ([]int64, error) {
	items, err := f.array(key)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(items))
	for i, it := range items {
		if it.Kind() != KindInteger {
			return nil, typeError(fmt.Sprintf("%s[%d]", key, i), KindInteger, it.Kind())
		}
		out = append(out, it.Int())
	}
	return out, nil
}

func (f Fields) array(key string) ([]Value, error) {
	v, ok := f[key]
	if !ok || v.IsNull() {
		return nil, nil
	}
	if v.Kind() != KindArray {
		return nil, typeError(key, KindArray, v.Kind())
	}
	return v.Items(), nil
}

func typeError(key string, want, got Kind) error {
	return fmt.Errorf("field %q: expected %s, got %s", key, want, got)
}
