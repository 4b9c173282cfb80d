// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"strings"
)

// Kind identifies one of the devotional counters.
type Kind string

const (
	// KindTasbeeh counts free tasbeeh toward an editable target.
	KindTasbeeh Kind = "tasbeeh"
	// KindDhikr counts post-prayer dhikr in rounds of 33.
	KindDhikr Kind = "dhikr"
	// KindIstighfar counts istighfar per phrase.
	KindIstighfar Kind = "istighfar"
	// KindDurood counts durood per phrase.
	KindDurood Kind = "durood"
)

// Kinds lists every counter in display order.
var Kinds = []Kind{KindTasbeeh, KindDhikr, KindIstighfar, KindDurood}

// ParseKind resolves a kind by name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown counter %q (want one of tasbeeh, dhikr, istighfar, durood)", s)
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Title returns the display name for a kind.
func (k Kind) Title() string {
	switch k {
	case KindTasbeeh:
		return "Tasbeeh"
	case KindDhikr:
		return "Dhikr"
	case KindIstighfar:
		return "Istighfar"
	case KindDurood:
		return "Durood"
	default:
		return "Unknown"
	}
}

// Namespace returns the storage key prefix for the kind.
func (k Kind) Namespace() string {
	switch k {
	case KindTasbeeh:
		return "@breakdown_"
	case KindDhikr:
		return "@dhikr_completions_"
	case KindIstighfar:
		return "@istighfar_"
	case KindDurood:
		return "@durood_"
	default:
		return "@" + string(k) + "_"
	}
}

// LegacySlots returns the keys of the older single-slot scheme, if the kind
// ever used one.
func (k Kind) LegacySlots() (countKey, dateKey string, ok bool) {
	switch k {
	case KindIstighfar:
		return "@istighfar_count", "@istighfar_date", true
	case KindDurood:
		return "@durood_count", "@durood_date", true
	default:
		return "", "", false
	}
}

// Namespaces returns the storage prefixes of every kind.
func Namespaces() []string {
	out := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, k.Namespace())
	}
	return out
}
