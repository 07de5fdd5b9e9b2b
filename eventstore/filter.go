package eventstore

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/crypto/blake2b"
)

type FilterEventTypeString = string

/***** Filter *****/

// Filter selects the "dynamic event stream" of one entity (its stream criteria).
// It is an OR of FilterItem(s); an empty Filter matches every event.
type Filter struct {
	items                    []FilterItem
	sequenceNumberHigherThan MaxSequenceNumberUint
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// SequenceNumberHigherThan returns the exclusive lower position bound, 0 means unbounded.
func (f Filter) SequenceNumberHigherThan() MaxSequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// WithSequenceNumberHigherThan returns a copy of the Filter that only matches events positioned after seq.
// It is used for incremental loads on top of a snapshot and for tailing the log.
func (f Filter) WithSequenceNumberHigherThan(seq MaxSequenceNumberUint) Filter {
	f.items = slices.Clone(f.items)
	f.sequenceNumberHigherThan = seq

	return f
}

// WithoutSequenceNumberBound returns a copy of the Filter without the lower position bound.
func (f Filter) WithoutSequenceNumberBound() Filter {
	return f.WithSequenceNumberHigherThan(0)
}

// Matches evaluates the Filter against an event in memory.
func (f Filter) Matches(event StorableEvent) bool {
	if f.sequenceNumberHigherThan > 0 && event.SequenceNumber <= f.sequenceNumberHigherThan {
		return false
	}

	if len(f.items) == 0 {
		return true
	}

	for _, item := range f.items {
		if item.Matches(event) {
			return true
		}
	}

	return false
}

// String returns the canonical representation, identical filters always render identically.
func (f Filter) String() string {
	if len(f.items) == 0 && f.sequenceNumberHigherThan == 0 {
		return "*"
	}

	parts := make([]string, 0, len(f.items))
	for _, item := range f.items {
		parts = append(parts, item.String())
	}

	s := strings.Join(parts, " OR ")
	if f.sequenceNumberHigherThan > 0 {
		s += fmt.Sprintf(" AND seq>%d", f.sequenceNumberHigherThan)
	}

	return s
}

// Hash returns a stable hex encoded blake2b hash of the canonical representation.
func (f Filter) Hash() string {
	sum := blake2b.Sum256([]byte(f.String()))

	return hex.EncodeToString(sum[:])
}

/***** FilterItem *****/

// FilterItem matches events having ANY of its event types AND ALL of its tags.
// Missing event types match any type, missing tags match any tags.
type FilterItem struct {
	eventTypes []FilterEventTypeString
	tags       Tags
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Tags() Tags {
	return fi.tags
}

// Matches evaluates the FilterItem against an event in memory.
func (fi FilterItem) Matches(event StorableEvent) bool {
	if len(fi.eventTypes) > 0 && !slices.Contains(fi.eventTypes, event.EventType) {
		return false
	}

	return event.Tags.ContainsAll(fi.tags)
}

func (fi FilterItem) String() string {
	tags := make([]string, 0, len(fi.tags))
	for _, t := range fi.tags {
		tags = append(tags, t.String())
	}

	return fmt.Sprintf("(types[%s] tags[%s])", strings.Join(fi.eventTypes, ","), strings.Join(tags, ","))
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic event filter to be used in engine-specific EventLog implementations to build queries
// for the specific query language, e.g.: Postgres, SQLite, or plain in-memory evaluation.
// It only allows the combinations that are useful to select the events of an entity:
//
//   - empty filter
//   - (eventType OR eventType...)
//   - (tag AND tag...)
//   - ((eventType OR eventType...) AND (tag AND tag...))
//   - (... ) OR (...) -> multiple FilterItem(s)
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyEvent directly creates an empty Filter.
	MatchingAnyEvent() Filter
}

type EmptyFilterItemBuilder interface {
	// AnyEventTypeOf adds one or multiple EventTypes to the current FilterItem.
	//
	// It sanitizes the input:
	//	- removing empty EventTypes ("")
	//	- sorting the EventTypes
	//	- removing duplicate EventTypes
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingTags

	// AllTagsOf adds one or multiple Tag(s) to the current FilterItem, all of them must be present on an event.
	//
	// It sanitizes the input like NewTags.
	AllTagsOf(tag Tag, tags ...Tag) FilterItemBuilderLackingEventTypes
}

type FilterItemBuilderLackingTags interface {
	// AndAllTagsOf adds one or multiple Tag(s) to the current FilterItem, all of them must be present on an event.
	AndAllTagsOf(tag Tag, tags ...Tag) CompletedFilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter.
	Finalize() Filter
}

type FilterItemBuilderLackingEventTypes interface {
	// AndAnyEventTypeOf adds one or multiple EventTypes to the current FilterItem.
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter.
	Finalize() Filter
}

type CompletedFilterItemBuilder interface {
	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// Finalize returns the Filter.
	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder
type filterBuilder struct {
	filter            Filter
	currentFilterItem FilterItem
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

// Matching starts a new FilterItem.
func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentFilterItem = FilterItem{}

	return fb
}

// AnyEventTypeOf adds one or multiple EventTypes to the current FilterItem expecting ANY EventType to match.
func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterItemBuilderLackingTags {

	fb.currentFilterItem.eventTypes = fb.sanitizeEventTypes(
		append(slices.Clone(fb.currentFilterItem.eventTypes), append([]FilterEventTypeString{eventType}, eventTypes...)...),
	)

	return fb
}

// AndAnyEventTypeOf adds one or multiple EventTypes to the current FilterItem expecting ANY EventType to match.
func (fb filterBuilder) AndAnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) CompletedFilterItemBuilder {

	return fb.AnyEventTypeOf(eventType, eventTypes...)
}

func (fb filterBuilder) sanitizeEventTypes(allEventTypes []FilterEventTypeString) []FilterEventTypeString {
	allEventTypes = slices.DeleteFunc(
		allEventTypes,
		func(e FilterEventTypeString) bool {
			return e == ""
		})
	slices.Sort(allEventTypes)
	allEventTypes = slices.Compact(allEventTypes)
	allEventTypes = slices.Clip(allEventTypes)

	return allEventTypes
}

// AllTagsOf adds one or multiple Tag(s) to the current FilterItem expecting ALL tags to be present.
func (fb filterBuilder) AllTagsOf(tag Tag, tags ...Tag) FilterItemBuilderLackingEventTypes {
	all := append(slices.Clone(fb.currentFilterItem.tags), tag)
	fb.currentFilterItem.tags = NewTags(append(all, tags...)...)

	return fb
}

// AndAllTagsOf adds one or multiple Tag(s) to the current FilterItem expecting ALL tags to be present.
func (fb filterBuilder) AndAllTagsOf(tag Tag, tags ...Tag) CompletedFilterItemBuilder {
	return fb.AllTagsOf(tag, tags...)
}

// OrMatching finalizes the current FilterItem and starts a new one.
func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.currentFilterItem)
	fb.currentFilterItem = FilterItem{}

	return fb
}

// MatchingAnyEvent directly creates an empty filter.
func (fb filterBuilder) MatchingAnyEvent() Filter {
	return fb.filter
}

// Finalize returns the Filter.
func (fb filterBuilder) Finalize() Filter {
	fb.filter.items = slices.Clip(append(slices.Clone(fb.filter.items), fb.currentFilterItem))

	return fb.filter
}
