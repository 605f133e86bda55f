package main

import (
	"sort"

	"github.com/maruel/natural"
)

// SortStrategy orders the entries of a gallery
type SortStrategy interface {
	// Sort returns a new sorted slice without modifying the original
	Sort(entries []Entry) []Entry
	// Name returns the human-readable name of the strategy
	Name() string
	// ID returns the numeric identifier used in the config file
	ID() int
}

// NaturalSortStrategy orders sources so that embedded numbers compare by
// value (page2 before page10)
type NaturalSortStrategy struct{}

func (s *NaturalSortStrategy) Sort(entries []Entry) []Entry {
	result := cloneEntries(entries)
	sort.SliceStable(result, func(i, j int) bool {
		return natural.Less(result[i].Src, result[j].Src)
	})
	return result
}

func (s *NaturalSortStrategy) Name() string {
	return "Natural"
}

func (s *NaturalSortStrategy) ID() int {
	return SortNatural
}

// SimpleSortStrategy orders sources lexicographically
type SimpleSortStrategy struct{}

func (s *SimpleSortStrategy) Sort(entries []Entry) []Entry {
	result := cloneEntries(entries)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Src < result[j].Src
	})
	return result
}

func (s *SimpleSortStrategy) Name() string {
	return "Simple"
}

func (s *SimpleSortStrategy) ID() int {
	return SortSimple
}

// EntryOrderSortStrategy keeps the order in which sources were found
type EntryOrderSortStrategy struct{}

func (s *EntryOrderSortStrategy) Sort(entries []Entry) []Entry {
	return cloneEntries(entries)
}

func (s *EntryOrderSortStrategy) Name() string {
	return "Entry Order"
}

func (s *EntryOrderSortStrategy) ID() int {
	return SortEntryOrder
}

func cloneEntries(entries []Entry) []Entry {
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result
}

// GetSortStrategy returns the strategy for a sort method id, natural for
// unknown ids
func GetSortStrategy(sortMethod int) SortStrategy {
	switch sortMethod {
	case SortSimple:
		return &SimpleSortStrategy{}
	case SortEntryOrder:
		return &EntryOrderSortStrategy{}
	default:
		return &NaturalSortStrategy{}
	}
}

// GetAllSortStrategies returns all available sort strategies
func GetAllSortStrategies() []SortStrategy {
	return []SortStrategy{
		&NaturalSortStrategy{},
		&SimpleSortStrategy{},
		&EntryOrderSortStrategy{},
	}
}
