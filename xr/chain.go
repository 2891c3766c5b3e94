package xr

// Chain is a structure chain: a singly linked list of extension structs
// hung off a create-info or properties record's Next field.
type Chain struct {
	Value any
	Next  *Chain
}

// Prepend returns a new head carrying v in front of next.
func Prepend(next *Chain, v any) *Chain {
	return &Chain{Value: v, Next: next}
}

// Len returns the number of links from c to the end of the chain.
func (c *Chain) Len() int {
	n := 0
	for ; c != nil; c = c.Next {
		n++
	}
	return n
}

// Values returns the chained values in order.
func (c *Chain) Values() []any {
	var out []any
	for ; c != nil; c = c.Next {
		out = append(out, c.Value)
	}
	return out
}

// FindIn returns the first chained value of type T.
func FindIn[T any](c *Chain) (T, bool) {
	for ; c != nil; c = c.Next {
		if v, ok := c.Value.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
