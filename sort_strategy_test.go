package main

import (
	"reflect"
	"testing"

	"lightbox/internal/lightbox"
)

func entries(srcs ...string) []Entry {
	list := make([]Entry, len(srcs))
	for i, src := range srcs {
		list[i] = Entry{Src: src, Kind: lightbox.KindImage}
	}
	return list
}

func sources(list []Entry) []string {
	var srcs []string
	for _, e := range list {
		srcs = append(srcs, e.Src)
	}
	return srcs
}

func TestSortStrategies(t *testing.T) {
	input := []string{
		"album/01.png",
		"album/book.cbz:p10.jpg",
		"album/book.cbz:p9.jpg",
		"album/08.png",
		"album/2.png",
		"album/３.png",
	}

	tests := []struct {
		name     string
		strategy SortStrategy
		want     []string
	}{
		{
			name:     "Natural",
			strategy: &NaturalSortStrategy{},
			want: []string{
				"album/01.png",
				"album/2.png",
				"album/08.png",
				"album/book.cbz:p9.jpg",
				"album/book.cbz:p10.jpg",
				"album/３.png",
			},
		},
		{
			name:     "Simple",
			strategy: &SimpleSortStrategy{},
			want: []string{
				"album/01.png",
				"album/08.png",
				"album/2.png",
				"album/book.cbz:p10.jpg",
				"album/book.cbz:p9.jpg",
				"album/３.png",
			},
		},
		{
			name:     "Entry Order",
			strategy: &EntryOrderSortStrategy{},
			want:     input,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.strategy.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", tt.strategy.Name(), tt.name)
			}

			in := entries(input...)
			original := entries(input...)
			got := sources(tt.strategy.Sort(in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sort mismatch\nExpected: %v\nGot:      %v", tt.want, got)
			}
			if !reflect.DeepEqual(in, original) {
				t.Error("Input slice was modified")
			}
			if len(tt.strategy.Sort(nil)) != 0 {
				t.Error("Sorting nothing must return an empty slice")
			}
		})
	}
}

func TestGetSortStrategy(t *testing.T) {
	tests := []struct {
		sortMethod int
		expectedID int
	}{
		{SortNatural, SortNatural},
		{SortSimple, SortSimple},
		{SortEntryOrder, SortEntryOrder},
		{999, SortNatural},
		{-1, SortNatural},
	}

	for _, tt := range tests {
		if got := GetSortStrategy(tt.sortMethod).ID(); got != tt.expectedID {
			t.Errorf("GetSortStrategy(%d).ID() = %d, want %d", tt.sortMethod, got, tt.expectedID)
		}
	}

	if n := len(GetAllSortStrategies()); n != 3 {
		t.Errorf("Expected 3 strategies, got %d", n)
	}
}
