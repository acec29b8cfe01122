// Package help holds the Dinglebob language reference shown by `dingle help`
// and the REPL's :help command.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// QUICKREF is the overview printed when no topic is given.
const QUICKREF = `Dinglebob v0.3 quick reference

  let x = 1;                     declare a variable (none when no initializer)
  x = x + 1;                     assign an existing variable
  define add(a, b) { return a + b; }
  let sq = lambda(n) { return n * n; };
  if x > 1 { print "big"; } else { print "small"; }
  while x < 10 { x = x + 1; }
  for (let i = 0; i < 3; i = i + 1) { print i; }
  let xs = [1, 2, 3]; xs[0] = 9; print len(xs);

Commands: dingle run <file> | check <file> | fmt <file> | repl | help [topic]

Topics: syntax, types, builtins, scope, flow, diagnostics, repl, examples
Run "dingle help <topic>" for details. Prefixes work: "dingle help diag".
`

// TopicList is the display order of the help topics.
var TopicList = []string{"syntax", "types", "builtins", "scope", "flow", "diagnostics", "repl", "examples"}

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `SYNTAX

Statements end with ';'. Blocks are '{ ... }'. Comments start with '//'.

  let name = expr;               declaration
  let name;                      declaration bound to none
  define name(p1, p2) { ... }    function declaration (up to 255 parameters)
  lambda(p1) { ... }             anonymous function expression
  print expr;
  return expr;  return;
  break;
  if cond { ... } else if cond { ... } else { ... }
  while cond { ... }
  for (init; cond; step) { ... } init may be a let; every clause is optional

Operators, loosest first:
  =                              assignment (right associative, yields the value)
  or   and                       short-circuit, yield the deciding operand
  ==  !=                         equality, never fails
  <  <=  >  >=                   ordering, same numeric type only
  +  -                           '+' also joins strings
  *  /  %
  -x  !x                         unary
  f(args)  xs[i]                 call and index

Strings use '...' or "..." and may span lines. There are no escapes.
'class', 'super' and 'this' are reserved.
`,
	"types": `TYPES

  String    "text"
  Int       42 (128-bit, overflow is an error)
  Float     2.5 (literals need digits on both sides of the point)
  Bool      true false
  None      none
  List      [1, "a", [2]] (mutable, shared by reference)
  Function  user functions, lambdas and built-ins

Truthiness: false, 0, 0.0 and none are false; everything else is true.
Int and Float mix in arithmetic (the result is a Float). Integer division
truncates toward zero. Dividing by zero is an error for both.
Equality never fails: values of different types are unequal, so 1 == 1.0
is false. Lists compare element by element.
String + anything converts the right side to text: "n=" + 1 is "n=1".
`,
	"builtins": `BUILT-INS

  timeit()           seconds since the Unix epoch, as a Float
  abs(n)             absolute value, as a Float
  len(xs)            length of a list (or characters in a string)
  copy(xs)           a new list with the same elements
  append(xs, v)      add v to the end of xs in place, returns xs
  concat(a, b)       a new list with the elements of a then b
  import(path)       run another .dingle file into the global scope

Run "dingle help builtins --index" for the compact list.
`,
	"scope": `SCOPE

Every block, function body and loop body is a new scope. A name may be
declared once per scope; an inner scope may shadow an outer name.

  let a = "outer";
  { let a = "inner"; print a; }  // inner
  print a;                       // outer

Functions capture the scope they were defined in, not the caller's:

  define counter() {
    let n = 0;
    return lambda() { n = n + 1; return n; };
  }

A local cannot be read in its own initializer: { let a = a; } is an error.
A function may call another one declared later in the same scope; the name
is looked up along the enclosing scopes when the call runs.
`,
	"flow": `CONTROL FLOW

'return' is only allowed inside a function or lambda body; 'break' only
inside a loop body. A 'break' inside a function does not reach a loop
around the call. Both are checked before the program runs.

'and' and 'or' stop as soon as the result is known and return the operand
that decided it: none or "x" is "x", 0 and f() is 0 without calling f.

A for loop runs as a block holding the initializer and a while loop:
  for (let i = 0; i < 3; i = i + 1) { body }
  { let i = 0; while i < 3 { { body } i = i + 1; } }
`,
	"diagnostics": `DIAGNOSTICS

Every error carries a code and a source location.

  E_LEX              bad character, number or unterminated string
  E_PARSE            syntax error
  E_DUP_DECL         name declared twice in one scope
  E_OWN_INITIALIZER  local read in its own initializer
  E_MISPLACED_FLOW   return outside a function, break outside a loop
  E_UNDEFINED        name not declared
  E_TYPE             operand or callee of the wrong type
  E_ARITY            wrong number of arguments
  E_DIV_ZERO         division or remainder by zero
  E_INDEX            list index out of range
  E_ASSIGN_TARGET    assignment to something that is not a variable or index
  E_OVERFLOW         integer result wider than 128 bits
  E_STACK_OVERFLOW   too many nested calls
  E_IO               file or output failure
  E_RESOLVER_BUG, E_NOT_AT_DEPTH
                     interpreter bugs; please report them

Exit codes: 0 ok, 1 usage or IO, 2 static error, 3 runtime error,
70 interpreter bug. Use --json for machine-readable output.
`,
	"repl": `REPL

Run "dingle" or "dingle repl". Each line is checked and run on its own.
If a line fails, nothing it did is kept: declarations, assignments and
list changes are all rolled back.

  :help [topic]      show help
  :env               list global names
  :quit  exit()      leave (Ctrl-D also works)

History is saved to repl.history_file (default ~/.dingle_history).
`,
	"examples": `EXAMPLES

  define fib(n) {
    if n < 2 { return n; }
    return fib(n - 1) + fib(n - 2);
  }
  print fib(20);

  let xs = [3, 1, 2];
  let ys = copy(xs);
  append(ys, 4);
  print xs;                      // [3, 1, 2]
  print ys;                      // [3, 1, 2, 4]

  let start = timeit();
  for (let i = 0; i < 1000; i = i + 1) {}
  print "took " + (timeit() - start);
`,
}

var builtinIndex = []struct{ name, signature string }{
	{"timeit", "timeit() -> Float"},
	{"abs", "abs(n) -> Float"},
	{"len", "len(xs) -> Int"},
	{"copy", "copy(xs) -> List"},
	{"append", "append(xs, v) -> List"},
	{"concat", "concat(a, b) -> List"},
	{"import", "import(path) -> None"},
}

// BuiltinIndex returns a compact listing of the built-ins.
func BuiltinIndex() string {
	var sb strings.Builder
	sb.WriteString("BUILT-IN INDEX\n\n")
	for _, b := range builtinIndex {
		fmt.Fprintf(&sb, "  %-8s %s\n", b.name, b.signature)
	}
	fmt.Fprintf(&sb, "\nTotal: %d functions\n", len(builtinIndex))
	return sb.String()
}

// MatchTopic finds a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[q]; ok {
		return q, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if q != "" && strings.HasPrefix(name, q) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	case 1:
		return matches[0], Topics[matches[0]], nil
	default:
		sort.Strings(matches)
		return "", "", fmt.Errorf("ambiguous help topic %q: matches %s", query, strings.Join(matches, ", "))
	}
}
