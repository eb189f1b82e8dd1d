package microrpc

// Kind identifies the JSON type of a Token.
type Kind byte

// Kind identifies the JSON type of a Token.
const (
	KindUndefined Kind = iota
	KindObject
	KindArray
	KindString
	KindPrimitive
)

// Token describes a single typed span within a parsed JSON document. Start and End
// are byte offsets into the original input; for strings the span excludes the
// surrounding quotes. Children counts immediate children only: each member of an
// object contributes one key token, and the member's value is recorded as a child
// of that key token rather than of the object. Parent points at an earlier token
// index, or -1 for a root, so the whole tree can be walked without child pointers.
//
// Tokens are immutable once Parse returns.
type Token struct {
	Kind     Kind
	Start    int
	End      int
	Children int
	Parent   int
}

// Parser turns raw JSON bytes into a flat sequence of Tokens inside a
// caller-supplied arena. The zero value is ready to use. A Parser keeps its scan
// position between calls, so after ErrIncomplete the same Parser may be called
// again with the same arena and an input extended with more bytes; every other
// use should start from a fresh Parser or a Reset one.
//
// The parser is strict: object keys must be strings, values must follow a
// literal ':', and primitives must start with '-', a digit, 't', 'f' or 'n'.
// It never allocates; everything it produces lives in the arena.
type Parser struct {
	pos   int // scan offset into the input
	next  int // number of arena slots filled so far
	super int // 1-based index of the open container or key, 0 for none
}

// Reset returns the Parser to its initial state so it can scan a new input.
func (p *Parser) Reset() {
	*p = Parser{}
}

// Parse scans data and fills tokens with the results, returning the total number
// of tokens produced. It fails with ErrNoMemory when the arena runs out of slots,
// ErrInvalidChar on input the strict grammar rejects, and ErrIncomplete when the
// input ends in the middle of a value or with a container still open.
//
// Whitespace-only input parses to zero tokens and no error; classifying that as
// a failure is the caller's business.
func (p *Parser) Parse(data []byte, tokens []Token) (int, error) {
	for ; p.pos < len(data); p.pos++ {
		c := data[p.pos]
		switch c {
		case '{', '[':
			tok := p.alloc(tokens)
			if tok == nil {
				return p.next, ErrNoMemory
			}
			if p.super != 0 {
				parent := &tokens[p.super-1]
				// An object or array cannot sit in key position.
				if parent.Kind == KindObject {
					return p.next, ErrInvalidChar
				}
				parent.Children++
				tok.Parent = p.super - 1
			}
			if c == '{' {
				tok.Kind = KindObject
			} else {
				tok.Kind = KindArray
			}
			tok.Start = p.pos
			p.super = p.next

		case '}', ']':
			want := KindObject
			if c == ']' {
				want = KindArray
			}
			if p.next < 1 {
				return p.next, ErrInvalidChar
			}
			tok := &tokens[p.next-1]
			for {
				if tok.Start != -1 && tok.End == -1 {
					if tok.Kind != want {
						return p.next, ErrInvalidChar
					}
					tok.End = p.pos + 1
					p.super = tok.Parent + 1
					break
				}
				if tok.Parent == -1 {
					if tok.Kind != want || p.super == 0 {
						return p.next, ErrInvalidChar
					}
					break
				}
				tok = &tokens[tok.Parent]
			}

		case '"':
			if err := p.parseString(data, tokens); err != nil {
				return p.next, err
			}
			if p.super != 0 {
				tokens[p.super-1].Children++
			}

		case '\t', '\r', '\n', ' ':

		case ':':
			p.super = p.next

		case ',':
			if p.super != 0 {
				k := tokens[p.super-1].Kind
				if k != KindArray && k != KindObject {
					p.super = tokens[p.super-1].Parent + 1
				}
			}

		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 't', 'f', 'n':
			if p.super != 0 {
				parent := &tokens[p.super-1]
				// A primitive cannot be an object key, nor follow a key that
				// already has its value.
				if parent.Kind == KindObject ||
					(parent.Kind == KindString && parent.Children != 0) {
					return p.next, ErrInvalidChar
				}
			}
			if err := p.parsePrimitive(data, tokens); err != nil {
				return p.next, err
			}
			if p.super != 0 {
				tokens[p.super-1].Children++
			}

		default:
			return p.next, ErrInvalidChar
		}
	}

	for i := p.next - 1; i >= 0; i-- {
		// A container still waiting for its closing bracket.
		if tokens[i].Start != -1 && tokens[i].End == -1 {
			return p.next, ErrIncomplete
		}
	}

	return p.next, nil
}

// alloc takes the next free arena slot, or returns nil when the arena is full.
func (p *Parser) alloc(tokens []Token) *Token {
	if p.next >= len(tokens) {
		return nil
	}
	tok := &tokens[p.next]
	p.next++
	*tok = Token{Start: -1, End: -1, Parent: -1}
	return tok
}

// parseString scans a quoted string starting at the opening quote. The produced
// token's span excludes the quotes. On failure the scan position is rewound so a
// retry with more input rescans the whole string.
func (p *Parser) parseString(data []byte, tokens []Token) error {
	start := p.pos
	for p.pos++; p.pos < len(data); p.pos++ {
		c := data[p.pos]

		if c == '"' {
			tok := p.alloc(tokens)
			if tok == nil {
				p.pos = start
				return ErrNoMemory
			}
			tok.Kind = KindString
			tok.Start = start + 1
			tok.End = p.pos
			if p.super != 0 {
				tok.Parent = p.super - 1
			}
			return nil
		}

		if c == '\\' && p.pos+1 < len(data) {
			p.pos++
			switch data[p.pos] {
			case '"', '/', '\\', 'b', 'f', 'r', 'n', 't':
			case 'u':
				p.pos++
				for i := 0; i < 4 && p.pos < len(data); i++ {
					if !isHexDigit(data[p.pos]) {
						p.pos = start
						return ErrInvalidChar
					}
					p.pos++
				}
				p.pos--
			default:
				p.pos = start
				return ErrInvalidChar
			}
		}
	}
	p.pos = start
	return ErrIncomplete
}

// parsePrimitive scans a number, boolean or null. Strict mode requires a
// delimiter after the primitive, so one that runs to the end of the input
// reports ErrIncomplete.
func (p *Parser) parsePrimitive(data []byte, tokens []Token) error {
	start := p.pos
	for ; p.pos < len(data); p.pos++ {
		switch data[p.pos] {
		case '\t', '\r', '\n', ' ', ',', ']', '}':
			tok := p.alloc(tokens)
			if tok == nil {
				p.pos = start
				return ErrNoMemory
			}
			tok.Kind = KindPrimitive
			tok.Start = start
			tok.End = p.pos
			if p.super != 0 {
				tok.Parent = p.super - 1
			}
			p.pos--
			return nil
		}
		if data[p.pos] < 32 || data[p.pos] >= 127 {
			p.pos = start
			return ErrInvalidChar
		}
	}
	p.pos = start
	return ErrIncomplete
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
