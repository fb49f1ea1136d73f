// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package engineprime

import "fmt"

// Version is a semantic (major, minor, patch) triple identifying a schema
// revision of an Engine Library. Versions compare lexicographically.
type Version struct {
	Major int
	Minor int
	Patch int

	// Variant distinguishes schema-identical versions that differ only in
	// the declared SQL type of certain boolean columns (currently only
	// 1.18.0 has more than one variant). Empty for every unambiguous
	// version.
	Variant string
}

// Variant tags for the one version pair the firmware disambiguates by
// column-type heuristic (see detect.go).
const (
	VariantFirmware = "fw"
	VariantDesktop  = "ep"
)

// String renders "major.minor.patch" or "major.minor.patch-variant".
func (v Version) String() string {
	if v.Variant == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d-%s", v.Major, v.Minor, v.Patch, v.Variant)
}

// Tuple reports the bare (major, minor, patch) triple ignoring variant.
func (v Version) Tuple() (int, int, int) { return v.Major, v.Minor, v.Patch }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, comparing (major, minor, patch) lexicographically. Variant is not
// ordered; it only ever discriminates two versions with an identical
// tuple, so Compare treats them as equal.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmpInt(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpInt(v.Minor, other.Minor)
	default:
		return cmpInt(v.Patch, other.Patch)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether v and other have the same tuple and variant.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0 && v.Variant == other.Variant
}

// Known schema versions, in ascending order. These are the only versions
// the registry recognizes; any other tuple read from an Information row is
// UnsupportedSchemaError.
var (
	Version1_6_0    = Version{1, 6, 0, ""}
	Version1_7_1    = Version{1, 7, 1, ""}
	Version1_9_1    = Version{1, 9, 1, ""}
	Version1_11_1   = Version{1, 11, 1, ""}
	Version1_13_0   = Version{1, 13, 0, ""}
	Version1_13_1   = Version{1, 13, 1, ""}
	Version1_13_2   = Version{1, 13, 2, ""}
	Version1_15_0   = Version{1, 15, 0, ""}
	Version1_17_0   = Version{1, 17, 0, ""}
	Version1_18_0FW = Version{1, 18, 0, VariantFirmware}
	Version1_18_0EP = Version{1, 18, 0, VariantDesktop}
)

// KnownVersions lists every recognized schema version in ascending order.
var KnownVersions = []Version{
	Version1_6_0,
	Version1_7_1,
	Version1_9_1,
	Version1_11_1,
	Version1_13_0,
	Version1_13_1,
	Version1_13_2,
	Version1_15_0,
	Version1_17_0,
	Version1_18_0FW,
	Version1_18_0EP,
}

// ambiguousTuples lists (major,minor,patch) tuples that map to more than one
// registered variant; detect.go probes a discriminator column to pick one.
var ambiguousTuples = map[[3]int]bool{
	{1, 18, 0}: true,
}
