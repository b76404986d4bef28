// Package assert panics on violated constructor preconditions.
package assert

import "reflect"

// NotNil panics when value is nil, including typed nil pointers, maps,
// slices, channels and funcs stored in an interface.
func NotNil(name string, value any) {
	if value == nil {
		panic("assert: " + name + " is nil")
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		if rv.IsNil() {
			panic("assert: " + name + " is nil")
		}
	}
}

func NotEmptyStr(name, str string) {
	if str == "" {
		panic("assert: " + name + " is empty")
	}
}
