package microrpc

// Tree is a parsed JSON document: the raw input bytes plus the tokens produced
// from them. It is a zero-copy view over the caller's buffers; all queries are
// linear forward scans over the flat token sequence, with no recursion and no
// allocation.
type Tree struct {
	Data   []byte
	Tokens []Token
}

// ParseTree scans data with a fresh Parser into the supplied arena and returns
// the resulting Tree. The Tree's token slice is the filled prefix of the arena.
func ParseTree(data []byte, arena []Token) (Tree, error) {
	var p Parser
	n, err := p.Parse(data, arena)
	if err != nil {
		return Tree{}, err
	}
	return Tree{Data: data, Tokens: arena[:n]}, nil
}

// ObjectMember returns the index of the member key token of obj whose span
// matches key, or the first member when key is empty. It returns -1 when obj is
// -1 or no member matches. The result is the key token; its value sits in the
// key's sole child.
func (t Tree) ObjectMember(obj int, key string) int {
	if obj < 0 {
		return -1
	}
	for i := obj + 1; i < len(t.Tokens); i++ {
		if t.Tokens[i].Parent != obj {
			continue
		}
		if key == "" || string(t.Bytes(i)) == key {
			return i
		}
	}
	return -1
}

// ArrayMember returns the index of the pos-th (0-based) element of the array
// token arr, or -1 when arr is not an array or pos is out of range.
func (t Tree) ArrayMember(arr, pos int) int {
	if arr < 0 || arr >= len(t.Tokens) || t.Tokens[arr].Kind != KindArray {
		return -1
	}
	n := 0
	for i := arr + 1; i < len(t.Tokens); i++ {
		if t.Tokens[i].Parent == arr {
			if n == pos {
				return i
			}
			n++
		}
	}
	return -1
}

// Value is the unifying accessor over the three token shapes. With a non-empty
// key it resolves the named member's value token. Otherwise the result depends
// on the token at tok: a string or primitive resolves to itself, or to its sole
// child when it is a member key wrapping a value; an array resolves to its
// pos-th element; an object resolves to the value of its pos-th member. It
// returns -1 when tok is -1 or nothing matches.
func (t Tree) Value(tok, pos int, key string) int {
	if tok < 0 || tok >= len(t.Tokens) {
		return -1
	}
	if key != "" {
		return t.memberValue(t.ObjectMember(tok, key))
	}
	switch t.Tokens[tok].Kind {
	case KindString, KindPrimitive:
		if t.Tokens[tok].Children > 0 {
			return t.memberValue(tok)
		}
		return tok
	case KindArray:
		return t.ArrayMember(tok, pos)
	case KindObject:
		m := t.ObjectMember(tok, "")
		for ; m >= 0 && pos > 0; pos-- {
			m = t.nextSibling(m)
		}
		return t.memberValue(m)
	}
	return -1
}

// KindOf returns the kind of the token at tok, or KindUndefined when tok is out
// of range.
func (t Tree) KindOf(tok int) Kind {
	if tok < 0 || tok >= len(t.Tokens) {
		return KindUndefined
	}
	return t.Tokens[tok].Kind
}

// Bytes returns the raw byte span of the token at tok, or nil when tok is out
// of range. The slice aliases the Tree's input; callers must not modify it.
func (t Tree) Bytes(tok int) []byte {
	if tok < 0 || tok >= len(t.Tokens) {
		return nil
	}
	return t.Data[t.Tokens[tok].Start:t.Tokens[tok].End]
}

// Text returns the token's span as a freshly allocated string. Handlers that
// need to stay allocation-free should use Bytes instead.
func (t Tree) Text(tok int) string {
	return string(t.Bytes(tok))
}

// memberValue resolves a member key token to its value token: the value
// immediately follows its key, and the parent check guards against running past
// the key in a malformed document.
func (t Tree) memberValue(key int) int {
	if key < 0 {
		return -1
	}
	v := key + 1
	if v >= len(t.Tokens) || t.Tokens[v].Parent != key {
		return -1
	}
	return v
}

// nextSibling returns the next token sharing m's parent, or -1.
func (t Tree) nextSibling(m int) int {
	for i := m + 1; i < len(t.Tokens); i++ {
		if t.Tokens[i].Parent == t.Tokens[m].Parent {
			return i
		}
	}
	return -1
}
