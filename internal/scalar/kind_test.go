package scalar_test

import (
	"fmt"
	"reflect"
	"time"

	"record-mapper/internal/scalar"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(scalar.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(scalar.FromReflectType(reflect.TypeOf("")))
	fmt.Println(scalar.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(scalar.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(scalar.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(scalar.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(scalar.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindInt
	// KindString
	// KindDuration
	// KindTime
	// Kind(0)
}

func ExampleConvert() {
	v, err := scalar.Convert(7.0, scalar.KindInt, scalar.CategoryDefault)
	fmt.Printf("%T %v %v\n", v, v, err)

	_, err = scalar.Convert(7.5, scalar.KindInt, scalar.CategoryDefault)
	fmt.Println(err)

	v, err = scalar.Convert("1h30m", scalar.KindDuration, scalar.CategoryDefault)
	fmt.Println(v, err)
	// Output:
	// int 7 <nil>
	// value is not convertible: float64 7.5 to int: loses precision
	// 1h30m0s <nil>
}
