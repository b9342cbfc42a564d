package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dario.cat/mergo"
)

// maxNestedInjectionBytes is the blob-size ceiling below which keypom_args
// injection may use dotted-path nesting; larger blobs fall back to flat
// top-level insertion (spec.md §4.6 step 4).
const maxNestedInjectionBytes = 4096

// buildFCArgs composes the final argument blob for one FC method call,
// following the four-step pipeline in spec.md §4.6.
func buildFCArgs(method MethodData, userArgs string, accountID AccountID, dropID DropID, keyID uint64, funderID AccountID) (string, error) {
	base := method.Args
	if strings.TrimSpace(base) == "" {
		base = "{}"
	}

	var blob map[string]any
	if err := json.Unmarshal([]byte(base), &blob); err != nil {
		return "", fmt.Errorf("%w: base args: %v", ErrInvalidInput, err)
	}
	if _, ok := blob["keypom_args"]; ok {
		return "", ErrKeypomArgsPresent
	}

	// Step 2: merge user-supplied per-method arguments.
	if strings.TrimSpace(userArgs) != "" {
		var user map[string]any
		if err := json.Unmarshal([]byte(userArgs), &user); err != nil {
			return "", fmt.Errorf("%w: user args: %v", ErrInvalidInput, err)
		}
		switch method.UserArgsRule {
		case AllUser:
			blob = user
		case FunderPreferred:
			// Left-biased: funder's (base) values win on conflict. mergo's
			// default merge keeps the destination's existing values, so
			// merging user INTO blob is exactly left-biased.
			if err := mergo.Merge(&blob, user); err != nil {
				return "", fmt.Errorf("merge funder-preferred args: %w", err)
			}
		case UserPreferred:
			// Right-biased: user's values win on conflict.
			if err := mergo.Merge(&blob, user, mergo.WithOverride); err != nil {
				return "", fmt.Errorf("merge user-preferred args: %w", err)
			}
			// Step 3: upper-case marker substitution — only for
			// UserPreferred with an object payload.
			substituteMarkers(blob, user)
		}
	}

	// Step 4: keypom injection.
	injected := map[string]string{"account_id": string(accountID), "drop_id": string(dropID), "key_id": fmt.Sprint(keyID), "funder_id": string(funderID)}
	nested := true
	sized, err := json.Marshal(blob)
	if err == nil && len(sized) > maxNestedInjectionBytes {
		nested = false
	}
	for field, which := range method.KeypomArgsFields {
		val, ok := injected[which]
		if !ok {
			continue
		}
		if nested {
			setDottedPath(blob, field, val)
		} else {
			blob[field] = val
		}
	}

	out, err := json.Marshal(blob)
	if err != nil {
		return "", fmt.Errorf("marshal fc args: %w", err)
	}

	keypomArgs, err := json.Marshal(struct {
		AccountID AccountID `json:"account_id,omitempty"`
		DropID    DropID    `json:"drop_id"`
		KeyID     uint64    `json:"key_id"`
		FunderID  AccountID `json:"funder_id"`
	}{accountID, dropID, keyID, funderID})
	if err != nil {
		return "", err
	}

	// Appended as a literal record, per spec.md §4.6, so downstream
	// contracts can audit the injection regardless of how the base blob
	// serialized its own fields.
	result := out[:len(out)-1]
	result = append(result, []byte(`,"keypom_args":`)...)
	result = append(result, keypomArgs...)
	result = append(result, '}')
	return string(result), nil
}

// substituteMarkers replaces `:"KEY"` patterns in the blob's JSON text with
// the user-supplied values, per spec.md §4.6 step 3 ("strings wrapped,
// objects inlined"). It operates structurally on the decoded map rather
// than via raw text substitution, which gives the same outcome without
// the quoting hazards of string search-and-replace.
func substituteMarkers(blob map[string]any, user map[string]any) {
	keys := make([]string, 0, len(user))
	for k := range user {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		marker := strings.ToUpper(k)
		replaceMarker(blob, marker, user[k])
	}
}

func replaceMarker(node map[string]any, marker string, value any) {
	for k, v := range node {
		switch vv := v.(type) {
		case string:
			if vv == marker {
				node[k] = value
			}
		case map[string]any:
			replaceMarker(vv, marker, value)
		}
	}
}

// setDottedPath writes value into blob at a dotted path, creating
// intermediate objects as needed (spec.md §4.6 step 4 nested injection).
func setDottedPath(blob map[string]any, path string, value string) {
	parts := strings.Split(path, ".")
	cur := blob
	for i, p := range parts {
		if i == len(parts)-1 {
			cur[p] = value
			return
		}
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
}
