// Copyright 2025 The Varres Authors
// SPDX-License-Identifier: Apache-2.0

package res

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// applyMerge folds a partial candidate's payload into base according to the
// candidate's merge method.
func applyMerge(base any, partial *Candidate) (any, error) {
	switch partial.Merge {
	case MergeReplace:
		return partial.Value.Value, nil
	case MergeAugment, "":
		return mergeAugment(base, partial.Value.Value)
	case MergeDelete:
		return mergeDelete(base, partial.Value.Value)
	default:
		return nil, fmt.Errorf("%s: unknown merge method", partial.Merge)
	}
}

// mergeAugment applies RFC 7386 merge-patch semantics: objects deep-merge,
// arrays and primitives are replaced, a null overlay value removes the key.
func mergeAugment(base, overlay any) (any, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("augment: %w", err)
	}
	overlayJSON, err := json.Marshal(overlay)
	if err != nil {
		return nil, fmt.Errorf("augment: %w", err)
	}
	mergedJSON, err := jsonpatch.MergePatch(baseJSON, overlayJSON)
	if err != nil {
		return nil, fmt.Errorf("augment: %w", err)
	}
	var merged any
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, fmt.Errorf("augment: %w", err)
	}
	return merged, nil
}

// mergeDelete drops the keys enumerated by the overlay (a JSON array of key
// names) from the base object, via an RFC 6902 remove patch. Keys absent
// from the base are ignored.
func mergeDelete(base, overlay any) (any, error) {
	keys, err := deleteKeys(overlay)
	if err != nil {
		return nil, err
	}
	baseMap, ok := base.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("delete: base value is not an object")
	}

	ops := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		if _, present := baseMap[key]; !present {
			continue
		}
		ops = append(ops, map[string]string{"op": "remove", "path": "/" + escapePointer(key)})
	}
	if len(ops) == 0 {
		return base, nil
	}

	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	resultJSON, err := patch.Apply(baseJSON)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	var result any
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return result, nil
}

// deleteKeys extracts the key names of a delete payload.
func deleteKeys(overlay any) ([]string, error) {
	list, ok := overlay.([]any)
	if !ok {
		if typed, okTyped := overlay.([]string); okTyped {
			return typed, nil
		}
		return nil, fmt.Errorf("delete: payload must be an array of key names")
	}
	keys := make([]string, len(list))
	for i, item := range list {
		key, okKey := item.(string)
		if !okKey {
			return nil, fmt.Errorf("delete: payload member %d is not a string", i)
		}
		keys[i] = key
	}
	return keys, nil
}

// escapePointer applies RFC 6901 token escaping.
func escapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}
