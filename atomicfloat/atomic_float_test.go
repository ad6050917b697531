package atomicfloat

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReadReturnsInitialValue(t *testing.T) {
	Convey("Given a Float64 constructed with New", t, func() {
		af := New(3.5)
		Convey("Read returns the value it was constructed with", func() {
			So(af.Read(), ShouldEqual, 3.5)
		})
	})
}

func TestSetThenRead(t *testing.T) {
	Convey("Given a Float64 at zero", t, func() {
		af := New(0)
		Convey("Set stores the new value and reports success", func() {
			ok := af.Set(42)
			So(ok, ShouldBeTrue)
			So(af.Read(), ShouldEqual, 42)
		})
	})
}

func TestAddAccumulates(t *testing.T) {
	Convey("Given a Float64 at 10", t, func() {
		af := New(10)
		Convey("Add returns the sum and reports success", func() {
			newVal, ok := af.Add(5)
			So(ok, ShouldBeTrue)
			So(newVal, ShouldEqual, 15)
			So(af.Read(), ShouldEqual, 15)
		})
	})
}

func TestConcurrentSetsNeverTornRead(t *testing.T) {
	Convey("Given many goroutines setting the same Float64 concurrently", t, func() {
		af := New(0)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(v float64) {
				defer wg.Done()
				af.Set(v)
			}(float64(i))
		}
		wg.Wait()

		Convey("Read never panics and returns one of the written values", func() {
			got := af.Read()
			So(got, ShouldBeGreaterThanOrEqualTo, 0)
			So(got, ShouldBeLessThan, 50)
		})
	})
}
