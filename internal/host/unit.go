package host

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/tacogips/dcg/internal/debug"
)

// Unit is a compiled template.
type Unit interface {
	// Invoke runs the template. writers maps writer keys to outputs; the
	// main output uses the key "_main_". params are the template
	// parameters in declaration order.
	Invoke(ctx context.Context, writers map[string]io.Writer, params ...interface{}) error

	// ParameterTypes returns the types of the template parameters.
	ParameterTypes() []reflect.Type

	// Source returns the generated source the unit was compiled from.
	Source() string

	// ArtifactPath returns the file the source was persisted to, if any.
	ArtifactPath() string
}

// unit is a Unit backed by an interpreted entry point. Invocations are
// serialized because the interpreter is not reentrant.
type unit struct {
	mu         sync.Mutex
	fn         reflect.Value
	source     string
	sourceName string
	artifact   string
}

func (u *unit) Source() string {
	return u.source
}

func (u *unit) ArtifactPath() string {
	return u.artifact
}

func (u *unit) ParameterTypes() []reflect.Type {
	typ := u.fn.Type()
	types := make([]reflect.Type, 0, typ.NumIn()-1)
	for i := 1; i < typ.NumIn(); i++ {
		types = append(types, typ.In(i))
	}
	return types
}

func (u *unit) Invoke(ctx context.Context, writers map[string]io.Writer, params ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	args, err := u.arguments(writers, params)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	debug.Debug("[host] Invoke: source=%q writers=%d params=%d", u.sourceName, len(writers), len(params))
	out, err := u.call(args)
	if err != nil {
		return err
	}
	if len(out) == 1 && !out[0].IsNil() {
		if callErr, ok := out[0].Interface().(error); ok {
			return classifyRuntime(callErr, u.sourceName)
		}
	}
	return nil
}

// call invokes the entry point, turning interpreter panics into errors.
func (u *unit) call(args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{
				Type:    RuntimePanic,
				Message: fmt.Sprintf("dcg: panic: %v", r),
				File:    u.sourceName,
			}
		}
	}()
	return u.fn.Call(args), nil
}

// arguments converts the writer map and parameters to entry point arguments.
func (u *unit) arguments(writers map[string]io.Writer, params []interface{}) ([]reflect.Value, error) {
	typ := u.fn.Type()
	if got, want := len(params), typ.NumIn()-1; got != want {
		return nil, &RuntimeError{
			Type:    RuntimeArgumentMismatch,
			Message: fmt.Sprintf("expected %d parameters, got %d", want, got),
			File:    u.sourceName,
		}
	}

	if writers == nil {
		writers = map[string]io.Writer{}
	}
	args := make([]reflect.Value, 0, typ.NumIn())
	w, err := convertArgument(reflect.ValueOf(writers), typ.In(0))
	if err != nil {
		return nil, &RuntimeError{Type: RuntimeArgumentMismatch, Message: "writers: " + err.Error(), File: u.sourceName}
	}
	args = append(args, w)

	for i, p := range params {
		in := typ.In(i + 1)
		if p == nil {
			args = append(args, reflect.Zero(in))
			continue
		}
		v, err := convertArgument(reflect.ValueOf(p), in)
		if err != nil {
			return nil, &RuntimeError{
				Type:    RuntimeArgumentMismatch,
				Message: fmt.Sprintf("parameter %d: %v", i+1, err),
				File:    u.sourceName,
			}
		}
		args = append(args, v)
	}
	return args, nil
}

// convertArgument adapts v to typ. Conversions that would turn a number
// into a string are rejected.
func convertArgument(v reflect.Value, typ reflect.Type) (reflect.Value, error) {
	if v.Type().AssignableTo(typ) {
		return v, nil
	}
	if typ.Kind() == reflect.String && v.Kind() != reflect.String {
		return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), typ)
	}
	if v.Type().ConvertibleTo(typ) {
		return v.Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), typ)
}
