package assets

import (
	"strconv"
	"strings"
)

// VersionTag is the integer tuple parsed from an index file stem, e.g. 1.10 -> [1 10].
type VersionTag []int

// ParseVersionTag splits stem on dots and parses every component as a
// non-negative integer. ok is false if any component is empty or not a number.
func ParseVersionTag(stem string) (VersionTag, bool) {
	if stem == "" {
		return nil, false
	}
	parts := strings.Split(stem, ".")
	tag := make(VersionTag, len(parts))
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return nil, false
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		tag[i] = n
	}
	return tag, true
}

// Compare orders tags component-wise, treating missing trailing components as
// 0, so 1.0 and 1.0.0 compare equal.
func (v VersionTag) Compare(other VersionTag) int {
	n := max(len(v), len(other))
	for i := 0; i < n; i++ {
		a, b := v.at(i), other.at(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func (v VersionTag) at(i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

func (v VersionTag) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}
