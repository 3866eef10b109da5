package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// ErrUnknownParam indicates a parameter path that names no settable field.
var ErrUnknownParam = errors.New("config: unknown parameter")

var durationType = reflect.TypeOf(time.Duration(0))

// SetParam sets one numeric field addressed as "kind.name.field", where
// field is the YAML key, e.g. "breaker.Heater CB.rating". Durations are
// given in seconds and booleans as non-zero. Top-level fields use
// "aircraft.field".
func (a *Aircraft) SetParam(path string, value float64) error {
	first := strings.Index(path, ".")
	last := strings.LastIndex(path, ".")
	if first < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownParam, path)
	}
	kind, field := path[:first], path[last+1:]

	var target reflect.Value
	if kind == "aircraft" && first == last {
		target = reflect.ValueOf(a).Elem()
	} else {
		if first == last {
			return fmt.Errorf("%w: %q", ErrUnknownParam, path)
		}
		name := path[first+1 : last]
		v, err := a.component(kind, name)
		if err != nil {
			return err
		}
		target = v
	}

	if err := setField(target, field, value); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (a *Aircraft) component(kind, name string) (reflect.Value, error) {
	var list reflect.Value
	switch kind {
	case "generator":
		list = reflect.ValueOf(a.Generators)
	case "bus":
		list = reflect.ValueOf(a.Buses)
	case "breaker":
		list = reflect.ValueOf(a.Breakers)
	case "load":
		list = reflect.ValueOf(a.Loads)
	case "actuator":
		list = reflect.ValueOf(a.Actuators)
	default:
		return reflect.Value{}, fmt.Errorf("%w: kind %q", ErrUnknownParam, kind)
	}
	for i := 0; i < list.Len(); i++ {
		item := list.Index(i)
		if item.FieldByName("Name").String() == name {
			return item, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%w: no %s named %q", ErrUnknownParam, kind, name)
}

func setField(target reflect.Value, key string, value float64) error {
	t := target.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
		if tag != key {
			continue
		}
		f := target.Field(i)
		switch {
		case f.Type() == durationType:
			f.SetInt(int64(value * float64(time.Second)))
		case f.Kind() == reflect.Float64:
			f.SetFloat(value)
		case f.Kind() == reflect.Int:
			f.SetInt(int64(value))
		case f.Kind() == reflect.Bool:
			f.SetBool(value != 0)
		case f.Kind() == reflect.Pointer && f.Type().Elem().Kind() == reflect.Float64:
			v := value
			f.Set(reflect.ValueOf(&v))
		default:
			return fmt.Errorf("%w: field %q is not numeric", ErrUnknownParam, key)
		}
		return nil
	}
	return fmt.Errorf("%w: field %q", ErrUnknownParam, key)
}
