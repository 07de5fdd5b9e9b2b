package eventstore

import (
	"cmp"
	"slices"
)

// Tag associates an event with an entity, e.g. T("Driver", "driver-001").
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// T builds a Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// String returns the tag as "Key=Value".
func (t Tag) String() string {
	return t.Key + "=" + t.Value
}

// IsEmpty reports whether the key or the value is missing.
func (t Tag) IsEmpty() bool {
	return t.Key == "" || t.Value == ""
}

func compareTags(a, b Tag) int {
	if c := cmp.Compare(a.Key, b.Key); c != 0 {
		return c
	}

	return cmp.Compare(a.Value, b.Value)
}

// Tags is an ordered set of Tag(s).
type Tags []Tag

// NewTags sanitizes the input:
//   - removing empty/partial Tag(s) (key or value is "")
//   - sorting the Tag(s) by key, then value
//   - removing duplicate Tag(s)
func NewTags(tags ...Tag) Tags {
	sanitized := slices.Clone(tags)
	sanitized = slices.DeleteFunc(sanitized, func(t Tag) bool { return t.IsEmpty() })
	slices.SortFunc(sanitized, compareTags)
	sanitized = slices.Compact(sanitized)

	return slices.Clip(sanitized)
}

// Contains reports whether tag is part of the set.
func (ts Tags) Contains(tag Tag) bool {
	for _, t := range ts {
		if t == tag {
			return true
		}
	}

	return false
}

// ContainsAll reports whether every given tag is part of the set.
func (ts Tags) ContainsAll(tags Tags) bool {
	for _, t := range tags {
		if !ts.Contains(t) {
			return false
		}
	}

	return true
}

// ValueOf returns the value of the first tag with the given key.
func (ts Tags) ValueOf(key string) (string, bool) {
	for _, t := range ts {
		if t.Key == key {
			return t.Value, true
		}
	}

	return "", false
}
