package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic; invalid input is reported as an error.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`let define lambda print return break`,
		`if else while for and or`,
		`true false none class super this`,
		// Literals
		`42 3.14 -1 0`,
		`"hello" 'single' "multi
line"`,
		// Operators
		`+ - * / % > < >= <= == != ! =`,
		// Delimiters
		`{ } [ ] ( ) , . ;`,
		// Comments
		`// this is a comment`,
		`a // b`,
		// Mixed
		`let x = 42;`,
		`define f(a, b) { return a + b; }`,
		`for (let i = 0; i < 3; i = i + 1) { print i; }`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`'`,
		`@#$^&`,
		"\x00",
		"\xff\xfe",
		`1.`,
		`012`,
		`.5`,
		`"unicode: ✓"`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			tokens, err := Tokenize(input, "fuzz.dingle")
			if err == nil && (len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF) {
				t.Fatalf("token stream for %q does not end in EOF", input)
			}
		}()
	})
}
