package idspec

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/cijsubs/cijsubs/internal/apperrors"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  Set
	}{
		{"single id", "7", Set{7}},
		{"list", "3,1,2", Set{1, 2, 3}},
		{"range", "5-8", Set{5, 6, 7, 8}},
		{"single element range", "5-5", Set{5}},
		{"mixed", "1,2,5-10,12", Set{1, 2, 5, 6, 7, 8, 9, 10, 12}},
		{"overlapping ranges collapse", "1-4,3-6,4", Set{1, 2, 3, 4, 5, 6}},
		{"duplicates collapse", "2,2,2", Set{2}},
		{"whitespace around tokens", "  1 , 3 - 4 ,9 ", Set{1, 3, 4, 9}},
		{"leading zeros", "007,010-011", Set{7, 10, 11}},
		{"largest id", strconv.Itoa(math.MaxInt), Set{math.MaxInt}},
		{"range ending at largest id", strconv.Itoa(math.MaxInt-1) + "-" + strconv.Itoa(math.MaxInt), Set{math.MaxInt - 1, math.MaxInt}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if spec.All {
				t.Fatalf("Parse(%q) returned All spec", tt.input)
			}
			if !reflect.DeepEqual(spec.IDs, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, spec.IDs, tt.want)
			}
		})
	}
}

func TestParse_UnionOfTokens(t *testing.T) {
	t.Parallel()
	spec, err := Parse("10,1-3,20-22,2,21")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := map[int]struct{}{}
	for _, id := range []int{10, 1, 2, 3, 20, 21, 22} {
		want[id] = struct{}{}
	}
	if len(spec.IDs) != len(want) {
		t.Fatalf("expected %d ids, got %d (%v)", len(want), len(spec.IDs), spec.IDs)
	}
	for i, id := range spec.IDs {
		if _, ok := want[id]; !ok {
			t.Errorf("unexpected id %d in result", id)
		}
		if i > 0 && spec.IDs[i-1] >= id {
			t.Errorf("ids not strictly ascending at index %d: %v", i, spec.IDs)
		}
	}
}

func TestParse_All(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"all", " all "} {
		spec, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", input, err)
		}
		if !spec.All || spec.IDs != nil {
			t.Errorf("Parse(%q) = %+v, want All spec", input, spec)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		input     string
		wantToken string
	}{
		{"empty", "", ""},
		{"blank", "   ", "   "},
		{"lone comma", ",", ""},
		{"empty middle segment", "1,,2", ""},
		{"trailing comma", "1,2,", ""},
		{"letters", "abc", "abc"},
		{"bad token among good", "1,x,3", "x"},
		{"reversed range", "3-1", "3-1"},
		{"open range end", "1-", "1-"},
		{"open range start", "-3", "-3"},
		{"double range", "1-2-3", "1-2-3"},
		{"zero", "0", "0"},
		{"range from zero", "0-2", "0-2"},
		{"signed", "+4", "+4"},
		{"keyword is case-sensitive", "ALL", "ALL"},
		{"keyword in list", "1,all", "all"},
		{"huge range", "1-1000000", "1-1000000"},
		{"overflow", "99999999999999999999", "99999999999999999999"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.input)
			}
			var pe *apperrors.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) expected *ParseError, got %T: %v", tt.input, err, err)
			}
			if pe.Token != tt.wantToken {
				t.Errorf("Parse(%q) token = %q, want %q", tt.input, pe.Token, tt.wantToken)
			}
		})
	}
}

func TestSet_Contains(t *testing.T) {
	t.Parallel()
	s := Set{1, 4, 9}
	for _, id := range []int{1, 4, 9} {
		if !s.Contains(id) {
			t.Errorf("expected set to contain %d", id)
		}
	}
	for _, id := range []int{0, 2, 10} {
		if s.Contains(id) {
			t.Errorf("expected set not to contain %d", id)
		}
	}
}
