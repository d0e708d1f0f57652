package selection

import (
	"fmt"
	"sort"
)

// Histogram counts, per pool item, how many users were offered it on one day.
type Histogram struct {
	Date   string
	Users  int
	Counts map[string]int
}

// Bucket is one row of a sorted histogram.
type Bucket struct {
	Item  string
	Count int
}

// Distribution runs SelectDaily for every user and tallies how often each item
// came up. Items never selected are present with a zero count.
func Distribution(userIDs []string, pool []string, date string, k int) (Histogram, error) {
	const op = "selection.Distribution"

	h := Histogram{Date: date, Users: len(userIDs), Counts: make(map[string]int, len(pool))}
	for _, item := range pool {
		h.Counts[item] = 0
	}
	for _, u := range userIDs {
		picked, err := SelectDaily(u, pool, date, k)
		if err != nil {
			return Histogram{}, fmt.Errorf("%s: user %q: %w", op, u, err)
		}
		for _, item := range picked {
			h.Counts[item]++
		}
	}
	return h, nil
}

// Sorted returns the buckets ordered by count descending, then item ascending.
func (h Histogram) Sorted() []Bucket {
	out := make([]Bucket, 0, len(h.Counts))
	for item, c := range h.Counts {
		out = append(out, Bucket{Item: item, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Item < out[j].Item
	})
	return out
}

// Total is the number of item slots handed out across all users.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}
