package convert

type evalStack []pointer

func (s *evalStack) depth() int {
	return len(*s)
}

func (s *evalStack) push(p pointer) {
	*s = append(*s, p)
}

// popN removes the top n pointers and returns them bottom-to-top.
// The returned slice aliases the stack and is only valid until the next push.
func (s *evalStack) popN(n int) []pointer {
	l := len(*s)
	top := (*s)[l-n : l]
	*s = (*s)[:l-n]
	return top
}

func (s *evalStack) clear() {
	*s = (*s)[:0]
}
