package catalog

import "strings"

// ObjectType classifies a catalog entry.
type ObjectType string

const (
	TypePlanet      ObjectType = "planet"
	TypeMoon        ObjectType = "moon"
	TypeNebula      ObjectType = "nebula"
	TypeGalaxy      ObjectType = "galaxy"
	TypeStarCluster ObjectType = "star_cluster"
	TypeStar        ObjectType = "star"
)

// ObjectTypes lists every valid type in display order.
var ObjectTypes = []ObjectType{TypePlanet, TypeMoon, TypeNebula, TypeGalaxy, TypeStarCluster, TypeStar}

// Valid reports whether t is one of ObjectTypes.
func (t ObjectType) Valid() bool {
	for _, v := range ObjectTypes {
		if t == v {
			return true
		}
	}
	return false
}

// RenderMode tells the consuming renderer how to draw the texture.
type RenderMode string

const (
	RenderSphere    RenderMode = "sphere"
	RenderFlat      RenderMode = "flat"
	RenderBillboard RenderMode = "billboard"
)

// RenderModes lists every valid render mode.
var RenderModes = []RenderMode{RenderSphere, RenderFlat, RenderBillboard}

// Valid reports whether m is one of RenderModes.
func (m RenderMode) Valid() bool {
	for _, v := range RenderModes {
		if m == v {
			return true
		}
	}
	return false
}

// ConflictPolicy decides what Upsert does when the name already exists.
type ConflictPolicy int

const (
	// ConflictAbort leaves the catalog untouched and returns a DuplicateNameError.
	ConflictAbort ConflictPolicy = iota
	// ConflictReplace drops every entry with the name and appends the new one at the tail.
	ConflictReplace
	// ConflictSkip leaves the existing entry in place without error.
	ConflictSkip
)

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictAbort:
		return "abort"
	case ConflictReplace:
		return "replace"
	case ConflictSkip:
		return "skip"
	default:
		return "unknown"
	}
}

func quoteList[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = "'" + string(v) + "'"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
