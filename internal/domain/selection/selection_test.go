package selection

import (
	"errors"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func intPool(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func stringPool(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func TestShuffle(t *testing.T) {
	Convey("Given small fixed inputs", t, func() {
		Convey("When shuffling with seed 12345", func() {
			got := Shuffle([]int{1, 2, 3, 4, 5}, 12345)

			Convey("Then the permutation is the recorded one", func() {
				So(got, ShouldResemble, []int{5, 4, 2, 1, 3})
			})
		})

		Convey("When shuffling with seed 0", func() {
			got := Shuffle([]int{1, 2, 3}, 0)

			Convey("Then the permutation is the recorded one", func() {
				So(got, ShouldResemble, []int{3, 2, 1})
			})
		})

		Convey("When shuffling a slice", func() {
			in := []int{1, 2, 3, 4, 5}
			_ = Shuffle(in, 99)

			Convey("Then the input is not modified", func() {
				So(in, ShouldResemble, []int{1, 2, 3, 4, 5})
			})
		})

		Convey("When shuffling empty and single-element slices", func() {
			Convey("Then they come back unchanged", func() {
				So(Shuffle([]int{}, 1), ShouldBeEmpty)
				So(Shuffle([]int{7}, 1), ShouldResemble, []int{7})
			})
		})
	})
}

func TestSelectDaily(t *testing.T) {
	Convey("Given a pool of twenty questions", t, func() {
		pool := intPool(20)

		Convey("When user 42 selects on 2024-10-11", func() {
			got, err := SelectDaily("42", pool, "2024-10-11", 10)

			Convey("Then the selection matches the golden vector", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []int{12, 19, 20, 15, 13, 8, 1, 6, 11, 17})
			})
		})

		Convey("When the same user selects the next day", func() {
			got, err := SelectDaily("42", pool, "2024-10-12", 10)

			Convey("Then the selection changes", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []int{2, 19, 5, 9, 10, 16, 7, 18, 8, 11})
			})
		})

		Convey("When other users select", func() {
			a, errA := SelectDaily("7", pool, "2024-10-11", 10)
			b, errB := SelectDaily("u1", pool, "2024-01-01", 10)

			Convey("Then each gets their own recorded subset", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, []int{10, 7, 3, 17, 13, 19, 6, 20, 12, 14})
				So(b, ShouldResemble, []int{15, 19, 7, 12, 9, 3, 20, 8, 2, 4})
			})
		})

		Convey("When the call is repeated", func() {
			first, _ := SelectDaily("42", pool, "2024-10-11", 10)
			second, _ := SelectDaily("42", pool, "2024-10-11", 10)

			Convey("Then it is idempotent", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When selecting every size from 0 to 25", func() {
			Convey("Then the result is a duplicate-free subset of length min(k, 20)", func() {
				for k := 0; k <= 25; k++ {
					got, err := SelectDaily("u1", pool, "2024-01-01", k)
					So(err, ShouldBeNil)
					So(len(got), ShouldEqual, min(k, 20))

					seen := make(map[int]bool, len(got))
					for _, v := range got {
						So(v, ShouldBeBetweenOrEqual, 1, 20)
						So(seen[v], ShouldBeFalse)
						seen[v] = true
					}
				}
			})
		})

		Convey("When k is larger than the pool", func() {
			got, err := SelectDaily("42", pool, "2024-10-11", 50)

			Convey("Then the whole pool is returned, shuffled", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 20)
				So(got[:10], ShouldResemble, []int{12, 19, 20, 15, 13, 8, 1, 6, 11, 17})
			})
		})
	})

	Convey("Given edge inputs", t, func() {
		Convey("When the pool is empty", func() {
			got, err := SelectDaily("42", []int{}, "2024-10-11", 10)

			Convey("Then an empty non-nil slice is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When k is zero", func() {
			got, err := SelectDaily("42", intPool(5), "2024-10-11", 0)

			Convey("Then nothing is selected", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When k is negative", func() {
			_, err := SelectDaily("42", intPool(5), "2024-10-11", -1)

			Convey("Then ErrInvalidArgument is returned", func() {
				So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the user id is empty", func() {
			_, err := SelectDaily("", intPool(5), "2024-10-11", 3)

			Convey("Then ErrInvalidArgument is returned", func() {
				So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
			})
		})
	})
}

func TestSelector(t *testing.T) {
	Convey("Given selectors", t, func() {
		Convey("When built without options", func() {
			s := NewSelector()

			Convey("Then the count defaults to ten", func() {
				So(s.Count(), ShouldEqual, DefaultCount)
				got, err := s.Select("42", stringPool(20), "2024-10-11")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []string{"12", "19", "20", "15", "13", "8", "1", "6", "11", "17"})
			})
		})

		Convey("When built with a count", func() {
			s := NewSelector(WithCount(3), WithCount(-4))

			Convey("Then the valid count wins", func() {
				So(s.Count(), ShouldEqual, 3)
				got, err := s.Select("42", stringPool(20), "2024-10-11")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []string{"12", "19", "20"})
			})
		})
	})
}

func TestDistribution(t *testing.T) {
	Convey("Given three users and twenty questions", t, func() {
		h, err := Distribution([]string{"1", "2", "3"}, stringPool(20), "2024-10-11", 10)

		Convey("Then counts match the recorded audit", func() {
			So(err, ShouldBeNil)
			want := map[string]int{
				"1": 1, "2": 3, "3": 1, "4": 2, "5": 2, "6": 2, "7": 1, "8": 2, "9": 1, "10": 1,
				"11": 2, "12": 2, "13": 0, "14": 0, "15": 2, "16": 2, "17": 2, "18": 1, "19": 2, "20": 1,
			}
			So(h.Counts, ShouldResemble, want)
			So(h.Users, ShouldEqual, 3)
			So(h.Total(), ShouldEqual, 30)
		})

		Convey("Then sorted buckets lead with the most frequent item", func() {
			sorted := h.Sorted()
			So(sorted, ShouldHaveLength, 20)
			So(sorted[0], ShouldResemble, Bucket{Item: "2", Count: 3})
			So(sorted[len(sorted)-1].Count, ShouldEqual, 0)
		})
	})

	Convey("Given an invalid user id", t, func() {
		_, err := Distribution([]string{"1", ""}, stringPool(5), "2024-10-11", 2)

		Convey("Then the error is surfaced", func() {
			So(errors.Is(err, ErrInvalidArgument), ShouldBeTrue)
		})
	})
}
