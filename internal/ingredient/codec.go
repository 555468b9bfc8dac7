package ingredient

import (
	"bytes"
	"fmt"

	"github.com/roach88/rowcook/internal/ir"
	"github.com/roach88/rowcook/internal/tree"
)

// Encode returns the document form of an ingredient:
//
//	{"type": "<TAG>", "config": {...}}
func Encode(ing Ingredient) tree.Object {
	return tree.Object{
		tree.M("type", tree.String(ing.Tag())),
		tree.M("config", ing.config()),
	}
}

// Equal reports whether a and b are the same variant with the same
// configuration.
func Equal(a, b Ingredient) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ea, err := tree.Marshal(Encode(a))
	if err != nil {
		return false
	}
	eb, err := tree.Marshal(Encode(b))
	if err != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}

// Decode builds an ingredient from its document form. path is used as the
// location prefix of any ConfigError.
func Decode(n tree.Node, path string) (Ingredient, error) {
	obj, err := asObject(n, path)
	if err != nil {
		return nil, err
	}
	if err := onlyKeys(obj, path, "type", "config"); err != nil {
		return nil, err
	}

	tagNode, ok := obj.Get("type")
	if !ok {
		return nil, configErrorf(JoinPath(path, "type"), "ingredient type is required")
	}
	tagStr, ok := tagNode.(tree.String)
	if !ok {
		return nil, configErrorf(JoinPath(path, "type"), "expected string, got %s", tree.Kind(tagNode))
	}
	tag := Tag(tagStr)
	if !ValidTags[tag] {
		return nil, configErrorf(JoinPath(path, "type"), "unknown ingredient type %q", tagStr)
	}

	cfgPath := JoinPath(path, "config")
	cfg := tree.Object{}
	if cfgNode, ok := obj.Get("config"); ok {
		if cfg, err = asObject(cfgNode, cfgPath); err != nil {
			return nil, err
		}
	}

	switch tag {
	case TagValue:
		return decodeValue(cfg, cfgPath)
	case TagRaw:
		return decodeRaw(cfg, cfgPath)
	case TagRef:
		return decodeReference(cfg, cfgPath)
	case TagMorph:
		return decodeMorph(cfg, cfgPath)
	case TagMatch:
		return decodeMatcher(cfg, cfgPath)
	case TagCircular:
		return decodeCircular(cfg, cfgPath)
	default:
		return nil, configErrorf(JoinPath(path, "type"), "unknown ingredient type %q", tag)
	}
}

func decodeValue(cfg tree.Object, path string) (Ingredient, error) {
	if err := onlyKeys(cfg, path); err != nil {
		return nil, err
	}
	return NewValue(), nil
}

func decodeRaw(cfg tree.Object, path string) (Ingredient, error) {
	if err := onlyKeys(cfg, path, "value"); err != nil {
		return nil, err
	}
	n, ok := cfg.Get("value")
	if !ok {
		return nil, configErrorf(JoinPath(path, "value"), "value is required")
	}
	v, err := fieldValue(n, JoinPath(path, "value"))
	if err != nil {
		return nil, err
	}
	return NewRaw(v), nil
}

func decodeReference(cfg tree.Object, path string) (Ingredient, error) {
	if err := onlyKeys(cfg, path, "type", "optional_values"); err != nil {
		return nil, err
	}
	etype, err := requiredString(cfg, "type", path)
	if err != nil {
		return nil, err
	}
	optional, err := optionalValues(cfg, path)
	if err != nil {
		return nil, err
	}
	return NewReference(etype, optional...), nil
}

func decodeMorph(cfg tree.Object, path string) (Ingredient, error) {
	if err := onlyKeys(cfg, path, "field", "morph_map", "optional_values"); err != nil {
		return nil, err
	}
	field, err := requiredString(cfg, "field", path)
	if err != nil {
		return nil, err
	}

	mapPath := JoinPath(path, "morph_map")
	mapNode, ok := cfg.Get("morph_map")
	if !ok {
		return nil, configErrorf(mapPath, "morph_map is required")
	}
	mapObj, err := asObject(mapNode, mapPath)
	if err != nil {
		return nil, err
	}
	morphMap := make(map[string]ir.EntityType, len(mapObj))
	for _, m := range mapObj {
		etype, ok := m.Value.(tree.String)
		if !ok {
			return nil, configErrorf(JoinPath(mapPath, m.Key), "expected entity type string, got %s", tree.Kind(m.Value))
		}
		morphMap[m.Key] = string(etype)
	}

	optional, err := optionalValues(cfg, path)
	if err != nil {
		return nil, err
	}
	return NewMorph(field, morphMap, optional...), nil
}

func decodeMatcher(cfg tree.Object, path string) (Ingredient, error) {
	if err := onlyKeys(cfg, path, "field", "on", "patterns", "default"); err != nil {
		return nil, err
	}
	field, err := requiredString(cfg, "field", path)
	if err != nil {
		return nil, err
	}

	onPath := JoinPath(path, "on")
	on := make(map[string]Ingredient)
	if n, ok := cfg.Get("on"); ok {
		obj, err := asObject(n, onPath)
		if err != nil {
			return nil, err
		}
		for _, m := range obj {
			ing, err := Decode(m.Value, JoinPath(onPath, m.Key))
			if err != nil {
				return nil, err
			}
			on[m.Key] = ing
		}
	}

	patternsPath := JoinPath(path, "patterns")
	var patterns []Pattern
	if n, ok := cfg.Get("patterns"); ok {
		obj, err := asObject(n, patternsPath)
		if err != nil {
			return nil, err
		}
		for _, m := range obj {
			ing, err := Decode(m.Value, JoinPath(patternsPath, m.Key))
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, Pattern{Expr: m.Key, Ingredient: ing})
		}
	}

	var def Ingredient
	if n, ok := cfg.Get("default"); ok {
		if _, isNull := n.(tree.Null); !isNull {
			if def, err = Decode(n, JoinPath(path, "default")); err != nil {
				return nil, err
			}
		}
	}

	return NewMatcher(field, on, patterns, def), nil
}

func decodeCircular(cfg tree.Object, path string) (Ingredient, error) {
	if err := onlyKeys(cfg, path, "ingredient", "fallback"); err != nil {
		return nil, err
	}
	nested := make([]Ingredient, 2)
	for i, name := range []string{"ingredient", "fallback"} {
		n, ok := cfg.Get(name)
		if !ok {
			return nil, configErrorf(JoinPath(path, name), "%s is required", name)
		}
		ing, err := Decode(n, JoinPath(path, name))
		if err != nil {
			return nil, err
		}
		nested[i] = ing
	}
	return NewCircular(nested[0], nested[1]), nil
}

func asObject(n tree.Node, path string) (tree.Object, error) {
	obj, ok := n.(tree.Object)
	if !ok {
		return nil, configErrorf(path, "expected object, got %s", tree.Kind(n))
	}
	return obj, nil
}

// onlyKeys rejects members not listed in allowed.
func onlyKeys(obj tree.Object, path string, allowed ...string) error {
	for _, m := range obj {
		known := false
		for _, a := range allowed {
			if m.Key == a {
				known = true
				break
			}
		}
		if !known {
			return configErrorf(JoinPath(path, m.Key), "unknown field")
		}
	}
	return nil
}

func requiredString(obj tree.Object, key, path string) (string, error) {
	n, ok := obj.Get(key)
	if !ok {
		return "", configErrorf(JoinPath(path, key), "%s is required", key)
	}
	s, ok := n.(tree.String)
	if !ok {
		return "", configErrorf(JoinPath(path, key), "expected string, got %s", tree.Kind(n))
	}
	if s == "" {
		return "", configErrorf(JoinPath(path, key), "%s must not be empty", key)
	}
	return string(s), nil
}

func fieldValue(n tree.Node, path string) (ir.FieldValue, error) {
	v, err := tree.ToFieldValue(n)
	if err != nil {
		return nil, configErrorf(path, "%v", err)
	}
	return v, nil
}

func optionalValues(obj tree.Object, path string) ([]ir.FieldValue, error) {
	path = JoinPath(path, "optional_values")
	n, ok := obj.Get("optional_values")
	if !ok {
		return nil, nil
	}
	arr, ok := n.(tree.Array)
	if !ok {
		return nil, configErrorf(path, "expected array, got %s", tree.Kind(n))
	}
	vals := make([]ir.FieldValue, len(arr))
	for i, elem := range arr {
		v, err := fieldValue(elem, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
