package usdc

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConversion(t *testing.T) {
	Convey("Given display amounts", t, func() {
		Convey("When converting to fixed point", func() {
			Convey("Then values scale by one million and round", func() {
				So(ToUSDC(1.23), ShouldEqual, 1230000)
				So(ToUSDC(0), ShouldEqual, 0)
				So(ToUSDC(0.9*3), ShouldEqual, 2700000)
				So(ToUSDC(0.0000005), ShouldEqual, 1)
				So(ToUSDC(-2.5), ShouldEqual, -2500000)
			})
		})

		Convey("When converting back", func() {
			Convey("Then the display amount is recovered", func() {
				So(FromUSDC(1230000), ShouldEqual, 1.23)
				So(FromUSDC(1), ShouldEqual, 0.000001)
				So(FromUSDC(ToUSDC(42.5)), ShouldEqual, 42.5)
			})
		})

		Convey("When formatting", func() {
			Convey("Then two decimals are shown", func() {
				So(Format(1230000), ShouldEqual, "1.23")
				So(Format(2000000), ShouldEqual, "2.00")
			})

			Convey("And Exact keeps every significant digit", func() {
				So(Exact(1230001), ShouldEqual, "1.230001")
				So(Exact(2000000), ShouldEqual, "2")
			})
		})
	})
}
