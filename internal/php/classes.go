package php

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// ClassDecl is a class-like declaration found in a source file
type ClassDecl struct {
	Name       string // fully qualified, without a leading separator
	ShortName  string
	Namespace  string
	Kind       string // class, trait, interface or enum
	Abstract   bool
	Parent     string
	Interfaces []string
	Traits     []string
	Methods    []Method
	Properties map[string]Property
	Line       int
}

// Method is a method declared directly in a class body
type Method struct {
	Name       string
	Visibility string
	Static     bool
	Abstract   bool
	Line       int
}

// Property is a property declared directly in a class body. Default holds
// the literal initializer when it could be read, or an Unknown.
type Property struct {
	Name       string
	Visibility string
	Static     bool
	HasDefault bool
	Default    any
}

// Method looks a declared method up by name; PHP method names are
// case-insensitive.
func (c *ClassDecl) Method(name string) (Method, bool) {
	for _, m := range c.Methods {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Method{}, false
}

// ParseClasses extracts class, trait, interface and enum declarations from
// src. Method bodies are skipped, so arbitrary code inside them is tolerated.
func ParseClasses(filename, src string) ([]*ClassDecl, error) {
	tokens, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}

	w := &classWalker{tokens: tokens, scope: NewScope()}
	w.walk()
	return w.classes, nil
}

type classWalker struct {
	tokens  []lexer.Token
	pos     int
	scope   *Scope
	classes []*ClassDecl
}

func (w *classWalker) peek(offset int) lexer.Token {
	if i := w.pos + offset; i >= 0 && i < len(w.tokens) {
		return w.tokens[i]
	}
	return lexer.EOFToken(lexer.Position{})
}

func (w *classWalker) done() bool {
	return w.pos >= len(w.tokens)
}

func isKeyword(tok lexer.Token, words ...string) bool {
	if tok.Type != tokenName {
		return false
	}
	for _, word := range words {
		if strings.EqualFold(tok.Value, word) {
			return true
		}
	}
	return false
}

func isPunct(tok lexer.Token, value string) bool {
	return (tok.Type == tokenPunct || tok.Type == tokenOperator) && tok.Value == value
}

func (w *classWalker) walk() {
	depth := 0
	// depth at which top-level declarations of the current namespace live
	nsDepth := 0
	var abstract bool

	for !w.done() {
		tok := w.peek(0)

		switch {
		case tok.Type == tokenAttr:
			w.skipAttribute()
			continue

		case isPunct(tok, "{"):
			depth++
		case isPunct(tok, "}"):
			depth--
			if depth < nsDepth {
				nsDepth = depth
			}

		case depth != nsDepth:
			// inside a function body or other block

		case isKeyword(tok, "namespace"):
			w.pos++
			name := ""
			if next := w.peek(0); next.Type == tokenName {
				name = next.Value
				w.pos++
			}
			w.scope.SetNamespace(name)
			if isPunct(w.peek(0), "{") {
				depth++
				nsDepth = depth
			}

		case isKeyword(tok, "use"):
			if w.peek(1).Type == tokenName {
				w.pos++
				w.parseImports()
				continue
			}

		case isKeyword(tok, "abstract"):
			abstract = true
		case isKeyword(tok, "final", "readonly"):

		case isKeyword(tok, "class", "trait", "interface", "enum"):
			prev := w.peek(-1)
			if w.peek(1).Type == tokenName && !isPunct(prev, "::") && !isKeyword(prev, "new") {
				w.parseClass(abstract)
				abstract = false
				continue
			}
			abstract = false

		default:
			abstract = false
		}
		w.pos++
	}
}

// skipAttribute moves past a `#[...]` attribute
func (w *classWalker) skipAttribute() {
	w.pos++
	level := 1
	for !w.done() && level > 0 {
		tok := w.peek(0)
		switch {
		case isPunct(tok, "["), tok.Type == tokenAttr:
			level++
		case isPunct(tok, "]"):
			level--
		}
		w.pos++
	}
}

// skipBalanced moves past a bracketed group starting at the current token
func (w *classWalker) skipBalanced() {
	level := 0
	for !w.done() {
		tok := w.peek(0)
		switch {
		case isPunct(tok, "("), isPunct(tok, "["), isPunct(tok, "{"), tok.Type == tokenAttr:
			level++
		case isPunct(tok, ")"), isPunct(tok, "]"), isPunct(tok, "}"):
			level--
		}
		w.pos++
		if level <= 0 {
			return
		}
	}
}

// skipStatement moves past the next `;` outside of brackets
func (w *classWalker) skipStatement() {
	for !w.done() {
		tok := w.peek(0)
		switch {
		case isPunct(tok, "("), isPunct(tok, "["), isPunct(tok, "{"):
			w.skipBalanced()
			continue
		case isPunct(tok, ";"):
			w.pos++
			return
		case isPunct(tok, "}"):
			return
		}
		w.pos++
	}
}

// parseImports reads the clause list of a top-level `use` statement
func (w *classWalker) parseImports() {
	if isKeyword(w.peek(0), "function", "const") {
		w.skipStatement()
		return
	}
	for !w.done() {
		tok := w.peek(0)
		if tok.Type != tokenName {
			w.skipStatement()
			return
		}
		w.pos++
		name := tok.Value

		// group import: use A\{B, C as D};
		if w.peek(0).Type == tokenOther && w.peek(0).Value == nsSep && isPunct(w.peek(1), "{") {
			w.pos += 2
			for !w.done() && !isPunct(w.peek(0), "}") {
				member := w.peek(0)
				if member.Type != tokenName {
					w.pos++
					continue
				}
				w.pos++
				w.scope.Import(name+nsSep+member.Value, w.parseAlias())
			}
			w.pos++
		} else {
			w.scope.Import(name, w.parseAlias())
		}

		switch next := w.peek(0); {
		case isPunct(next, ","):
			w.pos++
		case isPunct(next, ";"):
			w.pos++
			return
		default:
			w.skipStatement()
			return
		}
	}
}

func (w *classWalker) parseAlias() string {
	if isKeyword(w.peek(0), "as") && w.peek(1).Type == tokenName {
		alias := w.peek(1).Value
		w.pos += 2
		return alias
	}
	return ""
}

func (w *classWalker) parseClass(abstract bool) {
	keyword := w.peek(0)
	short := w.peek(1).Value
	w.pos += 2

	decl := &ClassDecl{
		Name:       w.scope.Resolve(short),
		ShortName:  short,
		Namespace:  w.scope.Namespace,
		Kind:       strings.ToLower(keyword.Value),
		Abstract:   abstract,
		Properties: make(map[string]Property),
		Line:       keyword.Pos.Line,
	}

	// header: extends / implements up to the opening brace
	var clause string
	for !w.done() && !isPunct(w.peek(0), "{") {
		tok := w.peek(0)
		w.pos++
		switch {
		case isKeyword(tok, "extends", "implements"):
			clause = strings.ToLower(tok.Value)
		case tok.Type == tokenName && clause == "extends" && decl.Kind != "interface":
			if decl.Parent == "" {
				decl.Parent = w.scope.Resolve(tok.Value)
			}
		case tok.Type == tokenName && clause != "":
			decl.Interfaces = append(decl.Interfaces, w.scope.Resolve(tok.Value))
		}
	}
	if w.done() {
		w.classes = append(w.classes, decl)
		return
	}
	w.pos++

	w.parseBody(decl)
	w.classes = append(w.classes, decl)
}

type memberModifiers struct {
	visibility string
	static     bool
	abstract   bool
}

func (w *classWalker) parseBody(decl *ClassDecl) {
	var mods memberModifiers

	for !w.done() {
		tok := w.peek(0)

		switch {
		case isPunct(tok, "}"):
			w.pos++
			return

		case tok.Type == tokenAttr:
			w.skipAttribute()

		case isPunct(tok, "{"), isPunct(tok, "("), isPunct(tok, "["):
			w.skipBalanced()

		case isKeyword(tok, "use"):
			w.pos++
			w.parseTraitUse(decl)
			mods = memberModifiers{}

		case isKeyword(tok, "public", "protected", "private", "var"):
			mods.visibility = strings.ToLower(tok.Value)
			if mods.visibility == "var" {
				mods.visibility = "public"
			}
			w.pos++
		case isKeyword(tok, "static"):
			mods.static = true
			w.pos++
		case isKeyword(tok, "abstract"):
			mods.abstract = true
			w.pos++

		case isKeyword(tok, "function"):
			w.pos++
			w.parseMethod(decl, mods, tok.Pos.Line)
			mods = memberModifiers{}

		case isKeyword(tok, "const", "case"):
			w.skipStatement()
			mods = memberModifiers{}

		case tok.Type == tokenVariable:
			w.parseProperties(decl, mods)
			mods = memberModifiers{}

		default:
			// type declarations, final, readonly
			w.pos++
		}
	}
}

func (w *classWalker) parseTraitUse(decl *ClassDecl) {
	for !w.done() {
		tok := w.peek(0)
		switch {
		case tok.Type == tokenName:
			decl.Traits = append(decl.Traits, w.scope.Resolve(tok.Value))
			w.pos++
		case isPunct(tok, ","):
			w.pos++
		case isPunct(tok, "{"):
			// conflict resolution block
			w.skipBalanced()
			return
		case isPunct(tok, ";"):
			w.pos++
			return
		default:
			w.skipStatement()
			return
		}
	}
}

func (w *classWalker) parseMethod(decl *ClassDecl, mods memberModifiers, line int) {
	if isPunct(w.peek(0), "&") {
		w.pos++
	}
	name := w.peek(0)
	if name.Type != tokenName {
		w.skipStatement()
		return
	}
	w.pos++

	visibility := mods.visibility
	if visibility == "" {
		visibility = "public"
	}
	decl.Methods = append(decl.Methods, Method{
		Name:       name.Value,
		Visibility: visibility,
		Static:     mods.static,
		Abstract:   mods.abstract || decl.Kind == "interface",
		Line:       line,
	})

	// parameters, return type, then a body or `;`
	for !w.done() {
		tok := w.peek(0)
		switch {
		case isPunct(tok, "("), isPunct(tok, "{"):
			opensBody := isPunct(tok, "{")
			w.skipBalanced()
			if opensBody {
				return
			}
		case isPunct(tok, ";"):
			w.pos++
			return
		case isPunct(tok, "}"):
			return
		default:
			w.pos++
		}
	}
}

func (w *classWalker) parseProperties(decl *ClassDecl, mods memberModifiers) {
	visibility := mods.visibility
	if visibility == "" {
		visibility = "public"
	}

	for !w.done() {
		tok := w.peek(0)
		if tok.Type != tokenVariable {
			w.skipStatement()
			return
		}
		w.pos++

		prop := Property{
			Name:       strings.TrimPrefix(tok.Value, "$"),
			Visibility: visibility,
			Static:     mods.static,
		}
		if isPunct(w.peek(0), "=") {
			w.pos++
			prop.HasDefault = true
			prop.Default = literalValue(w.collectInitializer())
		}
		decl.Properties[prop.Name] = prop

		switch next := w.peek(0); {
		case isPunct(next, ","):
			w.pos++
		case isPunct(next, ";"):
			w.pos++
			return
		default:
			w.skipStatement()
			return
		}
	}
}

// collectInitializer returns the tokens of an initializer up to the next
// `,` or `;` outside of brackets.
func (w *classWalker) collectInitializer() []lexer.Token {
	start := w.pos
	for !w.done() {
		tok := w.peek(0)
		switch {
		case isPunct(tok, "("), isPunct(tok, "["), isPunct(tok, "{"):
			w.skipBalanced()
			continue
		case isPunct(tok, ","), isPunct(tok, ";"), isPunct(tok, "}"):
			return w.tokens[start:w.pos]
		}
		w.pos++
	}
	return w.tokens[start:w.pos]
}

// literalValue reads a single-token scalar initializer
func literalValue(tokens []lexer.Token) any {
	if len(tokens) != 1 {
		return Unknown{Reason: "non-literal initializer"}
	}

	tok := tokens[0]
	switch tok.Type {
	case tokenString:
		body := tok.Value[1 : len(tok.Value)-1]
		if tok.Value[0] == '\'' {
			return unquoteSingle(body)
		}
		if value, ok := unquoteDouble(body, nil); ok {
			return value
		}
	case symbols["Number"]:
		if n, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
			return n
		}
	case tokenName:
		switch strings.ToLower(tok.Value) {
		case "true":
			return true
		case "false":
			return false
		case "null":
			return nil
		}
	}
	return Unknown{Reason: "non-literal initializer"}
}
