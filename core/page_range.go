package core

import (
	"strconv"
	"strings"
)

// ParsePageRange turns a 1-based page selection such as "1,3-5" into sorted,
// de-duplicated 0-based page indices for a document of pageCount pages.
//
// An empty spec or "all" selects every page. An open-ended range ("4-")
// runs to the last page.
//
// Examples:
//   - ParsePageRange("1,3-5", 10) returns [0 2 3 4]
//   - ParsePageRange("", 3) returns [0 1 2]
//   - ParsePageRange("2-", 4) returns [1 2 3]
func ParsePageRange(spec string, pageCount int) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "all") {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i
		}
		return pages, nil
	}

	selected := make([]bool, pageCount)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, ErrInvalidPageRange(spec, "empty element")
		}

		first, last, err := parseRangePart(part, pageCount)
		if err != nil {
			return nil, ErrInvalidPageRange(spec, err.Error())
		}
		if first < 1 || last > pageCount {
			return nil, ErrInvalidPageRange(spec, "page "+part+" outside 1-"+strconv.Itoa(pageCount))
		}
		if first > last {
			return nil, ErrInvalidPageRange(spec, "descending range "+part)
		}
		for p := first; p <= last; p++ {
			selected[p-1] = true
		}
	}

	var pages []int
	for i, ok := range selected {
		if ok {
			pages = append(pages, i)
		}
	}
	return pages, nil
}

func parseRangePart(part string, pageCount int) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	first, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return first, first, nil
	}
	hi = strings.TrimSpace(hi)
	if hi == "" {
		return first, pageCount, nil
	}
	last, err := strconv.Atoi(hi)
	if err != nil {
		return 0, 0, err
	}
	return first, last, nil
}
