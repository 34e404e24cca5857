package translator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/KATBlackCoder/Translate-AI-sub001/internal/engine"
	"github.com/KATBlackCoder/Translate-AI-sub001/internal/provider"
)

// wireID is the batch-local id an item travels under. Resource ids repeat
// across data files (Actors.json and Classes.json both start at record 1),
// so requests use a per-batch ordinal instead of the resource id.
func wireID(i int) string {
	return strconv.Itoa(i + 1)
}

// mergedUnit is one validated translation ready to be written back.
type mergedUnit struct {
	target     string
	confidence float64
	meta       *engine.UnitMeta
}

// mergeBatch matches a provider response onto the batch's units and
// validates it. Items are keyed by their wire id and field, the same ids
// runBatch assigned when building the request. Models hallucinate: they
// drop items, invent IDs, duplicate answers, and eat control codes. All of
// that is rejected here so the retry layer can ask again rather than
// corrupt a record.
func mergeBatch(units []engine.Unit, resp *provider.BatchResponse) ([]mergedUnit, error) {
	type key struct{ id, field string }

	expected := make(map[key]bool, len(units))
	for i, u := range units {
		expected[key{wireID(i), u.Field}] = true
	}

	byKey := make(map[key]provider.ResponseItem, len(resp.Items))
	for _, item := range resp.Items {
		k := key{item.ID, item.Field}
		if _, exists := byKey[k]; exists {
			return nil, fmt.Errorf("duplicate translation for id=%s field=%s in model output", item.ID, item.Field)
		}
		if !expected[k] {
			return nil, fmt.Errorf("unexpected translation id=%s field=%s (hallucination) from model", item.ID, item.Field)
		}
		byKey[k] = item
	}

	if len(byKey) != len(units) {
		return nil, fmt.Errorf("translation count mismatch: expected %d, got %d", len(units), len(byKey))
	}

	merged := make([]mergedUnit, len(units))
	for i, u := range units {
		item := byKey[key{wireID(i), u.Field}]
		if item.Text == "" {
			return nil, fmt.Errorf("empty translation for id=%s field=%s", u.ResourceID, u.Field)
		}
		if !codesPreserved(u.Source, item.Text) {
			return nil, fmt.Errorf("control codes lost for id=%s field=%s", u.ResourceID, u.Field)
		}
		merged[i] = mergedUnit{target: item.Text, confidence: item.Confidence}
	}
	return merged, nil
}

// controlCodePattern matches the engine escape sequences and placeholders
// that must survive translation byte-for-byte: \V[n], \N[n], \C[n] and
// friends, the bare \G currency code, and %1-style battle message
// placeholders.
var controlCodePattern = regexp.MustCompile(`\\[A-Za-z]+\[\d+\]|\\G|%\d+`)

// codesPreserved reports whether target carries exactly the control codes
// of source, duplicates included. Order is not checked: translations
// legitimately reorder codes with the sentence.
func codesPreserved(source, target string) bool {
	src := controlCodePattern.FindAllString(source, -1)
	if len(src) == 0 {
		return true
	}
	tgt := controlCodePattern.FindAllString(target, -1)
	if len(src) != len(tgt) {
		return false
	}
	sort.Strings(src)
	sort.Strings(tgt)
	for i := range src {
		if src[i] != tgt[i] {
			return false
		}
	}
	return true
}
