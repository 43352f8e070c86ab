// Package rangeset parses hand-written sample selections such as
// "3,5-8,10" into sets of integers.
package rangeset

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Set is an unordered collection of sample indices.
type Set map[int]struct{}

// New returns a set holding the given values.
func New(values ...int) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Parse reads a comma-delimited list of integers and dash-separated ranges.
//
// Each token is classified on its own: a plain integer is added as is, a
// token whose dash-separated parts are all integers adds every value
// between the smallest and largest part (so "5-3" and "2-9-4" both work),
// and anything else is dropped without affecting the other tokens. Parse
// never fails; an input made only of garbage yields an empty set.
//
// A lone signed integer such as "-5" is accepted. Range endpoints cannot be
// negative: "-2-3" and "3--1" contain an empty part and are dropped.
func Parse(text string) Set {
	s := make(Set)
	for _, tok := range strings.Split(text, ",") {
		tok = strings.TrimSpace(tok)

		if v, err := strconv.Atoi(tok); err == nil {
			s.Add(v)
			continue
		}

		lo, hi, ok := parseRange(tok)
		if !ok {
			continue
		}
		// v == hi ends the loop; v <= hi would wrap at MaxInt
		for v := lo; ; v++ {
			s.Add(v)
			if v == hi {
				break
			}
		}
	}
	return s
}

// parseRange returns the bounds of a dash-separated token.
func parseRange(tok string) (lo, hi int, ok bool) {
	parts := strings.Split(tok, "-")
	if len(parts) < 2 {
		return 0, 0, false
	}

	vals := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, false
		}
		vals = append(vals, v)
	}
	sort.Ints(vals)
	return vals[0], vals[len(vals)-1], true
}

func (s Set) Add(v int) { s[v] = struct{}{} }

func (s Set) Contains(v int) bool {
	_, ok := s[v]
	return ok
}

func (s Set) Len() int { return len(s) }

// Sorted returns the members in ascending order.
func (s Set) Sorted() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// String renders the set in the same syntax Parse accepts, collapsing
// runs of three or more consecutive values into ranges.
func (s Set) String() string {
	vals := s.Sorted()
	var b strings.Builder
	for i := 0; i < len(vals); {
		j := i
		for j+1 < len(vals) && vals[j+1] == vals[j]+1 {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		// negative endpoints have no range syntax
		if j-i >= 2 && vals[i] >= 0 {
			b.WriteString(strconv.Itoa(vals[i]))
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(vals[j]))
		} else {
			for k := i; k <= j; k++ {
				if k > i {
					b.WriteByte(',')
				}
				b.WriteString(strconv.Itoa(vals[k]))
			}
		}
		i = j + 1
	}
	return b.String()
}

// MarshalJSON encodes the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var vals []int
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	*s = New(vals...)
	return nil
}
