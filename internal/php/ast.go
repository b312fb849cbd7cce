package php

import "github.com/alecthomas/participle/v2/lexer"

// File is a configuration-shaped PHP file: imports, variable assignments and
// a return statement.
type File struct {
	Pos        lexer.Position
	Statements []*Statement `parser:"OpenTag? @@* CloseTag?"`
}

// Statement is a single top-level statement
type Statement struct {
	Pos       lexer.Position
	Namespace *string    `parser:"  'namespace' @Name ';'"`
	Use       *UseClause `parser:"| 'use' @@ ';'"`
	Declare   *Parens    `parser:"| 'declare' @@ ';'"`
	Function  *FuncDecl  `parser:"| @@"`
	Control   *Control   `parser:"| @@"`
	Return    *Return    `parser:"| @@"`
	Assign    *Assign    `parser:"| @@ ';'"`
	Expr      *Expr      `parser:"| @@ ';'"`
	Empty     bool       `parser:"| @';'"`
}

// Return is `return expr;`
type Return struct {
	Value *Expr `parser:"'return' @@? ';'"`
}

// UseClause imports one or more names
type UseClause struct {
	Kind  string     `parser:"@( 'function' | 'const' )?"`
	Items []*UseItem `parser:"@@ ( ',' @@ )*"`
}

// UseItem is `A\B`, `A\B as C` or a group `A\{B, C as D}`
type UseItem struct {
	Name  string     `parser:"@Name"`
	Group []*UseItem `parser:"( Other '{' @@ ( ',' @@ )* ','? '}' )?"`
	Alias string     `parser:"( 'as' @Name )?"`
}

// FuncDecl is a named function declaration; its body is skipped
type FuncDecl struct {
	Name   string  `parser:"'function' '&'? @Name"`
	Params *Parens `parser:"@@"`
	Result string  `parser:"( ':' '?'? @Name )?"`
	Body   *Block  `parser:"@@"`
}

// Control is an if/loop/switch statement; its bodies are skipped
type Control struct {
	Keyword  string        `parser:"@( 'if' | 'foreach' | 'for' | 'while' | 'switch' )"`
	Cond     *Parens       `parser:"@@"`
	Body     *Block        `parser:"@@"`
	Branches []*ElseBranch `parser:"@@*"`
}

// ElseBranch is `elseif (...) {}`, `else if (...) {}` or `else {}`
type ElseBranch struct {
	Keyword string  `parser:"@( 'elseif' | 'else' )"`
	Cond    *Parens `parser:"( 'if'? @@ )?"`
	Body    *Block  `parser:"@@"`
}

// Assign is `$var = expr` and its compound forms
type Assign struct {
	Target string       `parser:"@Variable"`
	Index  []*Subscript `parser:"@@*"`
	Op     string       `parser:"@( '=' | '.=' | '??=' )"`
	Value  *Expr        `parser:"@@"`
}

// Subscript is `[key]`, or `[]` when Key is nil
type Subscript struct {
	Key *Expr `parser:"'[' @@? ']'"`
}

// Expr is a left-associative chain of binary operators with an optional
// trailing ternary.
type Expr struct {
	Pos  lexer.Position
	Head *Unary        `parser:"@@"`
	Tail []*BinaryTail `parser:"@@*"`
	Then *Expr         `parser:"( '?' @@"`
	Else *Expr         `parser:"  ':' @@ )?"`
}

// BinaryTail is an operator and its right operand
type BinaryTail struct {
	Op   string `parser:"@( '.' | '?:' | '??' | '+' | '-' | '*' | '/' | '%' | '&&' | '||' | '===' | '!==' | '==' | '!=' | '<=' | '>=' | '<' | '>' | 'and' | 'or' )"`
	Term *Unary `parser:"@@"`
}

// Unary is a primary, or an include expression, with prefix operators and
// trailing member or index access.
type Unary struct {
	Ops     []string   `parser:"@( '!' | '-' | '+' | '@' )*"`
	Include *Include   `parser:"( @@"`
	Value   *Primary   `parser:"| @@ )"`
	Postfix []*Postfix `parser:"@@*"`
}

// Postfix is `[key]`, `->member` or `->method(...)`
type Postfix struct {
	Index  *Expr  `parser:"  '[' @@ ']'"`
	Member string `parser:"| ( '->' | '?->' ) @( Name | Variable )"`
	Args   *Args  `parser:"  @@?"`
}

// Include is `require`/`include` of another file
type Include struct {
	Keyword string `parser:"@( 'require_once' | 'require' | 'include_once' | 'include' )"`
	Target  *Expr  `parser:"@@"`
}

// Primary is a literal, a variable, a name reference or a parenthesized
// expression.
type Primary struct {
	Array    *ArrayLit `parser:"  @@"`
	Closure  *Closure  `parser:"| @@"`
	String   *string   `parser:"| @String"`
	Heredoc  *Heredoc  `parser:"| @@"`
	Number   *string   `parser:"| @Number"`
	Variable *VarRef   `parser:"| @@"`
	Ref      *NameRef  `parser:"| @@"`
	Paren    *Expr     `parser:"| '(' @@ ')'"`
}

// Heredoc is a `<<<LABEL` heredoc or a `<<<'LABEL'` nowdoc
type Heredoc struct {
	Open  string   `parser:"@Heredoc"`
	Lines []string `parser:"@HeredocBody*"`
	Close string   `parser:"@HeredocEnd"`
}

// ArrayLit is `[...]` or `array(...)`
type ArrayLit struct {
	Pos   lexer.Position
	Items []*ArrayItem `parser:"( '[' ( @@ ( ',' @@ )* ','? )? ']' | 'array' '(' ( @@ ( ',' @@ )* ','? )? ')' )"`
}

// ArrayItem holds a value, or a key and a value when Value is set
type ArrayItem struct {
	Spread bool  `parser:"@'...'?"`
	First  *Expr `parser:"'&'? @@"`
	Value  *Expr `parser:"( '=>' '&'? @@ )?"`
}

// Closure is an anonymous or arrow function; it evaluates to an unknown value
type Closure struct {
	Static   bool     `parser:"@'static'?"`
	Function *FuncLit `parser:"( @@"`
	Arrow    *ArrowFn `parser:"| @@ )"`
}

// FuncLit is `function (...) use (...) { ... }`
type FuncLit struct {
	Params *Parens `parser:"'function' '&'? @@"`
	Uses   *Parens `parser:"( 'use' @@ )?"`
	Result string  `parser:"( ':' '?'? @Name )?"`
	Body   *Block  `parser:"@@"`
}

// ArrowFn is `fn (...) => expr`
type ArrowFn struct {
	Params *Parens `parser:"'fn' '&'? @@"`
	Result string  `parser:"( ':' '?'? @Name )?"`
	Body   *Expr   `parser:"'=>' @@"`
}

// VarRef is `$var` with optional index access
type VarRef struct {
	Name  string  `parser:"@Variable"`
	Index []*Expr `parser:"( '[' @@ ']' )*"`
}

// NameRef covers constants, function calls, `Foo::class`, `Foo::CONST`,
// static calls and `new Foo(...)`.
type NameRef struct {
	New    bool    `parser:"@'new'?"`
	Name   string  `parser:"@Name"`
	Member *string `parser:"( '::' @( Name | Variable ) )?"`
	Args   *Args   `parser:"@@?"`
}

// Args is a call argument list
type Args struct {
	Values []*Expr `parser:"'(' ( @@ ( ',' @@ )* ','? )? ')'"`
}

// Parens is a balanced parenthesized token run that is not interpreted
type Parens struct {
	Items []*ParenItem `parser:"'(' @@* ')'"`
}

// ParenItem is a nested group or any token that is not a parenthesis
type ParenItem struct {
	Nested *Parens `parser:"  @@"`
	Token  string  `parser:"| @~( '(' | ')' )"`
}

// Block is a balanced brace-delimited token run that is not interpreted
type Block struct {
	Items []*BlockItem `parser:"'{' @@* '}'"`
}

// BlockItem is a nested block or any token that is not a brace
type BlockItem struct {
	Nested *Block `parser:"  @@"`
	Token  string `parser:"| @~( '{' | '}' )"`
}
