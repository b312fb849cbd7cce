// Package php reads the small subset of PHP source the route checker needs
// without executing it: configuration-shaped files that `return` array
// literals, and class declarations with their methods and property defaults.
package php

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes PHP source. Rules are tried in order; the trailing Other
// rule keeps unsupported syntax (backticks, stray bytes) from failing the
// lexer. Heredoc and nowdoc bodies are lexed line by line in their own state
// until the closing label, so quotes and braces inside them stay inert.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "OpenTag", Pattern: `<\?php|<\?=`},
		{Name: "CloseTag", Pattern: `\?>`},
		{Name: "Attribute", Pattern: `#\[`},
		{Name: "Comment", Pattern: `(?s:/\*.*?\*/)|(?://|#)[^\n]*`},
		{Name: "Heredoc", Pattern: `<<<[ \t]*["']?([\pL_][\pL\pN_]*)["']?[ \t]*\r?\n`, Action: lexer.Push("Heredoc")},
		{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
		{Name: "Variable", Pattern: `\$[\pL_][\pL\pN_]*`},
		{Name: "Name", Pattern: `\\?[\pL_][\pL\pN_]*(?:\\[\pL_][\pL\pN_]*)*`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "Operator", Pattern: `=>|::|\?->|->|\?\?=|\?\?|\?:|\.\.\.|===|!==|==|!=|<=>|<=|>=|&&|\|\||\.=|\+=|-=|\*\*`},
		{Name: "Punct", Pattern: `[-+*/%.,;:=()\[\]{}?!<>&|@^~]`},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `\S`},
	},
	"Heredoc": {
		{Name: "HeredocEnd", Pattern: `[ \t]*\1\b`, Action: lexer.Pop()},
		{Name: "HeredocBody", Pattern: `[^\n]*\n|[^\n]+`},
	},
})

var symbols = Lexer.Symbols()

// Token types used by the class extractor
var (
	tokenString   = symbols["String"]
	tokenVariable = symbols["Variable"]
	tokenName     = symbols["Name"]
	tokenPunct    = symbols["Punct"]
	tokenOperator = symbols["Operator"]
	tokenAttr     = symbols["Attribute"]
	tokenOther    = symbols["Other"]
)

// Tokenize lexes src and drops whitespace, comments and open/close tags
func Tokenize(filename, src string) ([]lexer.Token, error) {
	lex, err := Lexer.LexString(filename, src)
	if err != nil {
		return nil, fmt.Errorf("failed to lex %s: %w", filename, err)
	}

	skip := map[lexer.TokenType]bool{
		symbols["Whitespace"]: true,
		symbols["Comment"]:    true,
		symbols["OpenTag"]:    true,
		symbols["CloseTag"]:   true,
	}

	var tokens []lexer.Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to lex %s: %w", filename, err)
		}
		if tok.EOF() {
			return tokens, nil
		}
		if skip[tok.Type] {
			continue
		}
		tokens = append(tokens, tok)
	}
}
