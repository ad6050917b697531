package persistence

import (
	"strconv"
	"strings"
)

// VersionStringToNumber converts a dotted four-component version string
// (e.g. "1.2.0.3", optionally with a trailing "-postN" on the last
// component, which is stripped and ignored) into a single base-100
// integer, so two versions can be compared with a plain >=. Any component
// of 100 or greater, or any non-numeric component, makes the string
// invalid and returns ok=false.
func VersionStringToNumber(version string) (int, bool) {
	parts := strings.Split(version, ".")
	if len(parts) == 0 {
		return 0, false
	}
	last := parts[len(parts)-1]
	if i := strings.Index(last, "-"); i >= 0 {
		parts[len(parts)-1] = last[:i]
	}

	nums := make([]int, 4)
	for i := 0; i < 4; i++ {
		if i >= len(parts) {
			nums[i] = 0
			continue
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil || n >= 100 {
			return 0, false
		}
		nums[i] = n
	}

	total := 0
	multiplier := 1
	for i := 3; i >= 0; i-- {
		total += multiplier * nums[i]
		multiplier *= 100
	}
	return total, true
}

// IsCompatible reports whether a snapshot stamped with snapshotVersion can
// be loaded by a server whose minimum supported version is minVersion.
func IsCompatible(snapshotVersion, minVersion string) bool {
	if snapshotVersion == "" {
		return false
	}
	snapNum, ok := VersionStringToNumber(snapshotVersion)
	if !ok {
		return false
	}
	minNum, ok := VersionStringToNumber(minVersion)
	if !ok {
		return false
	}
	return snapNum >= minNum
}
