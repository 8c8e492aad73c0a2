package domain

import (
	"fmt"
	"strings"
)

// Village identifies one of the fixed set of locations, each with
// independent weather state.
type Village string

const (
	VillageRudania Village = "rudania"
	VillageInariko Village = "inariko"
	VillageVhintl  Village = "vhintl"
)

// Villages returns every known village in stable order.
func Villages() []Village {
	return []Village{VillageRudania, VillageInariko, VillageVhintl}
}

// ParseVillage normalizes and validates a village identifier.
func ParseVillage(s string) (Village, error) {
	switch v := Village(strings.ToLower(strings.TrimSpace(s))); v {
	case VillageRudania, VillageInariko, VillageVhintl:
		return v, nil
	default:
		return "", fmt.Errorf("unknown village %q", s)
	}
}
