package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

// ToDocument renders v (a *DataContract or any record of this package) back
// into the generic tree Decode consumes. Defaults are materialized, so the
// result is the normalized form of the original document.
func ToDocument(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("contract: encode: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("contract: encode: %w", err)
	}
	doc = restoreNumbers(doc).(map[string]any)
	restoreFreeForm(doc, v)
	return doc, nil
}

// restoreNumbers turns json.Number leaves back into int or float64, the
// scalar types a YAML decoder produces.
func restoreNumbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, vv := range x {
			x[k] = restoreNumbers(vv)
		}
		return x
	case []any:
		for i, vv := range x {
			x[i] = restoreNumbers(vv)
		}
		return x
	case json.Number:
		if i, err := strconv.Atoi(x.String()); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	}
	return v
}

// restoreFreeForm puts copies of the free-form values of v back into doc.
// encoding/json writes 100.0 as 100, so the numbers restoreNumbers rebuilt
// there may have the wrong type.
func restoreFreeForm(doc map[string]any, v any) {
	switch x := v.(type) {
	case *DataContract:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case DataContract:
		restoreFreeForm(doc, x.Fundamentals)
		eachRecord(doc, "schema", func(i int, m map[string]any) {
			if i < len(x.Schema) {
				restoreFreeForm(m, x.Schema[i])
			}
		})
	case *Fundamentals:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case Fundamentals:
		restoreText(doc, x.Description)
	case *Object:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case Object:
		restoreCommon(doc, x.CommonSchema)
		eachRecord(doc, "properties", func(i int, m map[string]any) {
			if i < len(x.Properties) {
				restoreFreeForm(m, x.Properties[i])
			}
		})
	case *ObjectProperties:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case ObjectProperties:
		restoreCommon(doc, x.CommonSchema)
		if len(x.LogicalTypeOptions) > 0 {
			doc["logicalTypeOptions"] = deepCopy(x.LogicalTypeOptions)
		}
	case *Quality:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case Quality:
		restoreText(doc, x.Description)
		restoreList(doc, "arguments", x.Arguments)
		restoreList(doc, "customProperties", x.CustomProperties)
	case *References:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case References:
		restoreList(doc, "customProperties", x.CustomProperties)
	case *Description:
		if x != nil {
			restoreFreeForm(doc, *x)
		}
	case Description:
		restoreList(doc, "customProperties", x.CustomProperties)
	}
}

func restoreCommon(doc map[string]any, c CommonSchema) {
	restoreText(doc, c.Description)
	restoreList(doc, "customProperties", c.CustomProperties)
	eachRecord(doc, "quality", func(i int, m map[string]any) {
		if i < len(c.Quality) {
			restoreFreeForm(m, c.Quality[i])
		}
	})
	eachRecord(doc, "relationships", func(i int, m map[string]any) {
		if i < len(c.Relationships) {
			restoreFreeForm(m, c.Relationships[i])
		}
	})
}

func restoreText(doc map[string]any, t Text) {
	if m, ok := doc["description"].(map[string]any); ok && t.Structured != nil {
		restoreFreeForm(m, *t.Structured)
	}
}

func restoreList(doc map[string]any, key string, list []map[string]any) {
	if len(list) == 0 {
		return
	}
	out := make([]any, len(list))
	for i, m := range list {
		out[i] = deepCopy(m)
	}
	doc[key] = out
}

func eachRecord(doc map[string]any, key string, fn func(int, map[string]any)) {
	seq, _ := doc[key].([]any)
	for i, item := range seq {
		if m, ok := item.(map[string]any); ok {
			fn(i, m)
		}
	}
}

// EncodeYAML writes v (a *DataContract or any record of this package) as a
// YAML document indented by two spaces, fields in declaration order. Whole
// floats keep a ".0" so the output decodes back to the same values.
func EncodeYAML(w io.Writer, v any) error {
	doc, err := ToDocument(v)
	if err != nil {
		return err
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return fmt.Errorf("contract: encode yaml: %w", err)
	}
	markFloats(&n, doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&n); err != nil {
		return fmt.Errorf("contract: encode yaml: %w", err)
	}
	return enc.Close()
}

// markFloats walks n alongside its generic form v and rewrites scalars whose
// value is an integral float64, which yaml.v3 would print as an integer.
func markFloats(n *yaml.Node, v any) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			markFloats(c, v)
		}
	case yaml.MappingNode:
		m, _ := v.(map[string]any)
		for i := 0; i+1 < len(n.Content); i += 2 {
			markFloats(n.Content[i+1], m[n.Content[i].Value])
		}
	case yaml.SequenceNode:
		seq, _ := v.([]any)
		for i, c := range n.Content {
			if i < len(seq) {
				markFloats(c, seq[i])
			}
		}
	case yaml.ScalarNode:
		if f, ok := v.(float64); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			n.Value = strconv.FormatFloat(f, 'f', 1, 64)
			n.Tag = "!!float"
		}
	}
}

// Fingerprint returns a hex-encoded xxh3-128 hash of the canonical JSON form
// of dc. Two documents that normalize to the same contract share a
// fingerprint regardless of key order, formatting or omitted defaults.
func Fingerprint(dc *DataContract) (string, error) {
	if dc == nil {
		return "", fmt.Errorf("contract: fingerprint of nil contract")
	}
	b, err := json.Marshal(dc)
	if err != nil {
		return "", fmt.Errorf("contract: fingerprint: %w", err)
	}
	sum := xxh3.Hash128(b).Bytes()
	return hex.EncodeToString(sum[:]), nil
}
