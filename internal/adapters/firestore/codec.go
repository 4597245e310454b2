package firestore

import (
	"encoding/json"
	"fmt"
	"math"
	"path"
	"strconv"
	"time"

	"shelter-meds/internal/ports/docstore"
)

// wireDocument es el documento tal como lo devuelve la API REST.
type wireDocument struct {
	Name       string                     `json:"name"`
	Fields     map[string]json.RawMessage `json:"fields"`
	CreateTime string                     `json:"createTime,omitempty"`
	UpdateTime string                     `json:"updateTime,omitempty"`
}

// encodeValue arma el objeto etiquetado ({"stringValue": ...}, etc.).
// integerValue viaja como string.
func encodeValue(v docstore.Value) map[string]any {
	switch v.Kind() {
	case docstore.KindString:
		return map[string]any{"stringValue": v.Str()}
	case docstore.KindBool:
		return map[string]any{"booleanValue": v.Boolean()}
	case docstore.KindInteger:
		return map[string]any{"integerValue": strconv.FormatInt(v.Int(), 10)}
	case docstore.KindTimestamp:
		return map[string]any{"timestampValue": v.Time().UTC().Format(time.RFC3339Nano)}
	case docstore.KindArray:
		items := v.Items()
		if len(items) == 0 {
			return map[string]any{"arrayValue": map[string]any{}}
		}
		values := make([]map[string]any, 0, len(items))
		for _, it := range items {
			values = append(values, encodeValue(it))
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}
	default:
		return map[string]any{"nullValue": nil}
	}
}

func encodeFields(f docstore.Fields) map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f {
		out[k] = encodeValue(v)
	}
	return out
}

func decodeValue(raw json.RawMessage) (docstore.Value, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return docstore.Null(), fmt.Errorf("value is not an object: %w", err)
	}
	if len(m) != 1 {
		return docstore.Null(), fmt.Errorf("value must have exactly one type tag, got %d", len(m))
	}

	for tag, body := range m {
		switch tag {
		case "nullValue":
			return docstore.Null(), nil

		case "stringValue":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return docstore.Null(), fmt.Errorf("stringValue: %w", err)
			}
			return docstore.String(s), nil

		case "booleanValue":
			var b bool
			if err := json.Unmarshal(body, &b); err != nil {
				return docstore.Null(), fmt.Errorf("booleanValue: %w", err)
			}
			return docstore.Bool(b), nil

		case "integerValue":
			i, err := decodeInteger(body)
			if err != nil {
				return docstore.Null(), fmt.Errorf("integerValue: %w", err)
			}
			return docstore.Integer(i), nil

		case "doubleValue":
			// Los clientes JS escriben números enteros como double.
			var f float64
			if err := json.Unmarshal(body, &f); err != nil {
				return docstore.Null(), fmt.Errorf("doubleValue: %w", err)
			}
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return docstore.Null(), fmt.Errorf("doubleValue %v is not integral", f)
			}
			return docstore.Integer(int64(f)), nil

		case "timestampValue":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return docstore.Null(), fmt.Errorf("timestampValue: %w", err)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return docstore.Null(), fmt.Errorf("timestampValue: %w", err)
			}
			return docstore.Timestamp(t), nil

		case "arrayValue":
			var arr struct {
				Values []json.RawMessage `json:"values"`
			}
			if err := json.Unmarshal(body, &arr); err != nil {
				return docstore.Null(), fmt.Errorf("arrayValue: %w", err)
			}
			items := make([]docstore.Value, 0, len(arr.Values))
			for i, it := range arr.Values {
				v, err := decodeValue(it)
				if err != nil {
					return docstore.Null(), fmt.Errorf("arrayValue[%d]: %w", i, err)
				}
				items = append(items, v)
			}
			return docstore.Array(items...), nil

		default:
			return docstore.Null(), fmt.Errorf("unsupported value type %q", tag)
		}
	}
	return docstore.Null(), nil
}

// decodeInteger acepta el string que manda la API y también un número JSON.
func decodeInteger(body json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	var i int64
	if err := json.Unmarshal(body, &i); err != nil {
		return 0, err
	}
	return i, nil
}

func decodeFields(raw map[string]json.RawMessage) (docstore.Fields, error) {
	out := make(docstore.Fields, len(raw))
	for k, body := range raw {
		v, err := decodeValue(body)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// toDocument: el id es el último segmento de name.
func toDocument(w wireDocument) (docstore.Document, error) {
	doc := docstore.Document{ID: path.Base(w.Name)}
	if w.Name == "" {
		return doc, fmt.Errorf("document without name")
	}

	fields, err := decodeFields(w.Fields)
	if err != nil {
		return doc, err
	}
	doc.Fields = fields

	if w.CreateTime != "" {
		if doc.CreateTime, err = time.Parse(time.RFC3339Nano, w.CreateTime); err != nil {
			return doc, fmt.Errorf("createTime: %w", err)
		}
	}
	if w.UpdateTime != "" {
		if doc.UpdateTime, err = time.Parse(time.RFC3339Nano, w.UpdateTime); err != nil {
			return doc, fmt.Errorf("updateTime: %w", err)
		}
	}
	return doc, nil
}
