// Package symbols translates between canonical trading-pair names and
// exchange-native instrument identifiers. All outward events use the
// canonical name; all wire requests use the native identifier.
package symbols

import "fmt"

// Translator resolves pair names in both directions. It is injected into the
// readers rather than accessed as a process-wide singleton so tests can
// substitute their own mapping.
type Translator interface {
	ToNative(pair string) (string, error)
	ToCanonical(instID string) (string, error)
}

// StaticTranslator is a Translator backed by a fixed pair list, typically
// built from configuration at startup.
type StaticTranslator struct {
	native    map[string]string
	canonical map[string]string
}

// NewStaticTranslator builds a StaticTranslator from a canonical-pair to
// native-identifier mapping.
func NewStaticTranslator(pairs map[string]string) *StaticTranslator {
	t := &StaticTranslator{
		native:    make(map[string]string, len(pairs)),
		canonical: make(map[string]string, len(pairs)),
	}
	for pair, instID := range pairs {
		t.native[pair] = instID
		t.canonical[instID] = pair
	}
	return t
}

// ToNative returns the exchange-native identifier for a canonical pair.
func (t *StaticTranslator) ToNative(pair string) (string, error) {
	instID, ok := t.native[pair]
	if !ok {
		return "", fmt.Errorf("no native instrument for pair %q", pair)
	}
	return instID, nil
}

// ToCanonical returns the canonical pair for an exchange-native identifier.
func (t *StaticTranslator) ToCanonical(instID string) (string, error) {
	pair, ok := t.canonical[instID]
	if !ok {
		return "", fmt.Errorf("no canonical pair for instrument %q", instID)
	}
	return pair, nil
}
