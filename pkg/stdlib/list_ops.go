package stdlib

import (
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/dinglebob/dingle/pkg/interpreter"
)

func expectList(v interpreter.Value) (*interpreter.List, error) {
	v, err := interpreter.Expect(v, interpreter.TagList)
	if err != nil {
		return nil, err
	}
	return v.(*interpreter.List), nil
}

// len(list | string) → Int
func stdlibLen(args []interpreter.Value) (interpreter.Value, error) {
	if s, ok := args[0].(interpreter.Str); ok {
		return interpreter.NewInt(int64(utf8.RuneCountInString(s.Value))), nil
	}
	list, err := expectList(args[0])
	if err != nil {
		return nil, err
	}
	return interpreter.NewInt(int64(len(list.Items))), nil
}

// copy(list) → a new list holding the same elements
func stdlibCopy(args []interpreter.Value) (interpreter.Value, error) {
	list, err := expectList(args[0])
	if err != nil {
		return nil, err
	}
	items := make([]interpreter.Value, len(list.Items))
	copy(items, list.Items)
	return interpreter.NewList(items), nil
}

// append(list, value) → the same list, extended in place
func stdlibAppend(args []interpreter.Value) (interpreter.Value, error) {
	list, err := expectList(args[0])
	if err != nil {
		return nil, err
	}
	list.Items = append(list.Items, args[1])
	return list, nil
}

// concat(a, b) → a new list with the elements of a followed by b
func stdlibConcat(args []interpreter.Value) (interpreter.Value, error) {
	a, err := expectList(args[0])
	if err != nil {
		return nil, err
	}
	b, err := expectList(args[1])
	if err != nil {
		return nil, err
	}
	return interpreter.NewList(lo.Flatten([][]interpreter.Value{a.Items, b.Items})), nil
}
