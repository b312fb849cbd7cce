package php

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// maxIncludeDepth bounds nested require/include evaluation
const maxIncludeDepth = 8

// ErrNoReturn is returned when a file has no top-level return statement
var ErrNoReturn = errors.New("no return statement")

var fileParser = participle.MustBuild[File](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(participle.MaxLookahead),
)

// Parse parses a configuration-shaped PHP file
func Parse(filename, src string) (*File, error) {
	file, err := fileParser.ParseString(filename, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filename), err)
	}
	return file, nil
}

// EvalReturnFile reads path and evaluates the value of its top-level return
// statement.
func EvalReturnFile(path string) (any, error) {
	return evalFile(path, 0)
}

// EvalReturn evaluates the value of the top-level return statement of src.
// filename is used for __DIR__, __FILE__ and relative includes.
func EvalReturn(filename, src string) (any, error) {
	return evalSource(filename, src, 0)
}

func evalFile(path string, depth int) (any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return evalSource(path, string(content), depth)
}

func evalSource(filename, src string, depth int) (any, error) {
	file, err := Parse(filename, src)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}

	ev := &evaluator{
		file:  abs,
		scope: NewScope(),
		vars:  make(map[string]any),
		depth: depth,
	}
	return ev.run(file)
}

// evaluator executes the statically evaluable subset of a PHP file
type evaluator struct {
	file  string
	scope *Scope
	vars  map[string]any
	depth int
}

func (ev *evaluator) run(file *File) (any, error) {
	for _, stmt := range file.Statements {
		switch {
		case stmt.Namespace != nil:
			ev.scope.SetNamespace(*stmt.Namespace)
		case stmt.Use != nil:
			if stmt.Use.Kind == "" {
				for _, item := range stmt.Use.Items {
					ev.importItem("", item)
				}
			}
		case stmt.Assign != nil:
			ev.assign(stmt.Assign)
		case stmt.Return != nil:
			if stmt.Return.Value == nil {
				return nil, nil
			}
			return ev.expr(stmt.Return.Value), nil
		}
	}
	return nil, ErrNoReturn
}

func (ev *evaluator) importItem(prefix string, item *UseItem) {
	name := item.Name
	if prefix != "" {
		name = prefix + nsSep + strings.TrimPrefix(name, nsSep)
	}
	if len(item.Group) > 0 {
		for _, member := range item.Group {
			ev.importItem(name, member)
		}
		return
	}
	ev.scope.Import(name, item.Alias)
}

func (ev *evaluator) assign(a *Assign) {
	value := ev.expr(a.Value)
	name := strings.TrimPrefix(a.Target, "$")

	if len(a.Index) == 0 {
		switch a.Op {
		case ".=":
			left, lok := stringValue(ev.vars[name])
			right, rok := stringValue(value)
			if lok && rok {
				ev.vars[name] = left + right
			} else {
				ev.vars[name] = Unknown{Reason: "concatenation of unknown value"}
			}
		case "??=":
			if current, ok := ev.vars[name]; !ok || current == nil {
				ev.vars[name] = value
			}
		default:
			ev.vars[name] = value
		}
		return
	}

	// $config['a']['b'] = value
	current, ok := ev.vars[name].(*Array)
	if !ok {
		if _, exists := ev.vars[name]; exists {
			return
		}
		current = NewArray()
		ev.vars[name] = current
	}
	for i, sub := range a.Index {
		last := i == len(a.Index)-1
		index := sub.Key
		if index == nil {
			if last {
				current.Append(value)
				return
			}
			next := NewArray()
			current.Append(next)
			current = next
			continue
		}
		key, ok := arrayKey(ev.expr(index))
		if !ok {
			return
		}
		if last {
			current.Set(key, value)
			return
		}
		next, ok := current.values[key].(*Array)
		if !ok {
			next = NewArray()
			current.Set(key, next)
		}
		current = next
	}
}

func (ev *evaluator) expr(e *Expr) any {
	if e == nil {
		return nil
	}

	value := ev.unary(e.Head)
	for _, tail := range e.Tail {
		value = ev.binary(tail.Op, value, tail.Term)
	}

	if e.Then != nil {
		cond, ok := truthy(value)
		if !ok {
			return Unknown{Reason: "ternary on unknown condition"}
		}
		if cond {
			return ev.expr(e.Then)
		}
		return ev.expr(e.Else)
	}
	return value
}

func (ev *evaluator) binary(op string, left any, rightTerm *Unary) any {
	switch op {
	case "?:":
		// an unknown left side is usually an environment lookup; its static
		// fallback is the best available answer
		if cond, ok := truthy(left); ok && cond {
			return left
		}
		return ev.unary(rightTerm)
	case "??":
		if left != nil && !IsUnknown(left) {
			return left
		}
		return ev.unary(rightTerm)
	}

	right := ev.unary(rightTerm)
	switch op {
	case ".":
		l, lok := stringValue(left)
		r, rok := stringValue(right)
		if lok && rok {
			return l + r
		}
	case "+", "-", "*":
		l, lok := left.(int64)
		r, rok := right.(int64)
		if lok && rok {
			switch op {
			case "+":
				return l + r
			case "-":
				return l - r
			default:
				return l * r
			}
		}
	case "&&", "and", "||", "or":
		l, lok := truthy(left)
		r, rok := truthy(right)
		if lok && rok {
			if op == "&&" || op == "and" {
				return l && r
			}
			return l || r
		}
	case "===", "==":
		if isScalar(left) && isScalar(right) {
			return left == right
		}
	case "!==", "!=":
		if isScalar(left) && isScalar(right) {
			return left != right
		}
	}
	return Unknown{Reason: "unsupported operator " + op}
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, int64, float64, bool, nil:
		return true
	}
	return false
}

func (ev *evaluator) unary(u *Unary) any {
	if u == nil {
		return nil
	}

	var value any
	if u.Include != nil {
		value = ev.include(u.Include)
	} else {
		value = ev.primary(u.Value)
	}

	for _, post := range u.Postfix {
		if post.Index == nil {
			return Unknown{Reason: "member access"}
		}
		arr, ok := value.(*Array)
		if !ok {
			return Unknown{Reason: "index of non-array"}
		}
		key, ok := arrayKey(ev.expr(post.Index))
		if !ok {
			return Unknown{Reason: "unknown index"}
		}
		value, _ = arr.Get(key)
	}

	for i := len(u.Ops) - 1; i >= 0; i-- {
		switch u.Ops[i] {
		case "!":
			b, ok := truthy(value)
			if !ok {
				return Unknown{Reason: "negation of unknown value"}
			}
			value = !b
		case "-":
			switch n := value.(type) {
			case int64:
				value = -n
			case float64:
				value = -n
			default:
				return Unknown{Reason: "negation of non-number"}
			}
		}
	}
	return value
}

func (ev *evaluator) include(inc *Include) any {
	target, ok := ev.expr(inc.Target).(string)
	if !ok {
		return Unknown{Reason: "include of unknown path"}
	}
	if ev.depth >= maxIncludeDepth {
		return Unknown{Reason: "include depth exceeded"}
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(ev.file), target)
	}
	value, err := evalFile(target, ev.depth+1)
	if err != nil {
		return Unknown{Reason: err.Error()}
	}
	return value
}

func (ev *evaluator) primary(p *Primary) any {
	switch {
	case p == nil:
		return nil
	case p.Array != nil:
		return ev.array(p.Array)
	case p.Closure != nil:
		return Unknown{Reason: "closure"}
	case p.String != nil:
		return ev.stringLiteral(*p.String)
	case p.Heredoc != nil:
		return ev.heredoc(p.Heredoc)
	case p.Number != nil:
		if n, err := strconv.ParseInt(*p.Number, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(*p.Number, 64); err == nil {
			return f
		}
		return Unknown{Reason: "number " + *p.Number}
	case p.Variable != nil:
		return ev.variable(p.Variable)
	case p.Ref != nil:
		return ev.nameRef(p.Ref)
	case p.Paren != nil:
		return ev.expr(p.Paren)
	}
	return Unknown{Reason: "unsupported expression"}
}

func (ev *evaluator) array(lit *ArrayLit) any {
	arr := NewArray()
	for _, item := range lit.Items {
		if item.Spread {
			if src, ok := ev.expr(item.First).(*Array); ok {
				src.Each(func(key string, v any) {
					if isIntKey(key) {
						arr.Append(v)
					} else {
						arr.Set(key, v)
					}
				})
			}
			continue
		}
		if item.Value == nil {
			arr.Append(ev.expr(item.First))
			continue
		}
		key, ok := arrayKey(ev.expr(item.First))
		if !ok {
			// an entry with an unknown key cannot be addressed
			continue
		}
		arr.Set(key, ev.expr(item.Value))
	}
	return arr
}

func (ev *evaluator) variable(v *VarRef) any {
	value, ok := ev.vars[strings.TrimPrefix(v.Name, "$")]
	if !ok {
		return Unknown{Reason: "undefined variable " + v.Name}
	}
	for _, index := range v.Index {
		arr, ok := value.(*Array)
		if !ok {
			return Unknown{Reason: "index of non-array"}
		}
		key, ok := arrayKey(ev.expr(index))
		if !ok {
			return Unknown{Reason: "unknown index"}
		}
		if value, ok = arr.Get(key); !ok {
			return nil
		}
	}
	return value
}

func (ev *evaluator) nameRef(ref *NameRef) any {
	if ref.New {
		return Unknown{Reason: "object creation"}
	}

	if ref.Member != nil {
		if strings.EqualFold(*ref.Member, "class") && ref.Args == nil {
			if isSpecialClass(ref.Name) {
				return Unknown{Reason: ref.Name + "::class"}
			}
			return ev.scope.Resolve(ref.Name)
		}
		if ref.Args != nil {
			return ev.staticCall(ev.scope.Resolve(ref.Name), *ref.Member, ref.Args)
		}
		return Unknown{Reason: "class constant " + ref.Name + "::" + *ref.Member}
	}

	if ref.Args != nil {
		return ev.call(ref.Name, ref.Args)
	}
	return ev.constant(ref.Name)
}

func (ev *evaluator) constant(name string) any {
	switch strings.ToLower(strings.TrimPrefix(name, nsSep)) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	switch strings.TrimPrefix(name, nsSep) {
	case "__DIR__":
		return filepath.Dir(ev.file)
	case "__FILE__":
		return ev.file
	case "DIRECTORY_SEPARATOR":
		return string(filepath.Separator)
	case "PHP_EOL":
		return "\n"
	}
	return Unknown{Reason: "constant " + name}
}

func (ev *evaluator) args(args *Args) []any {
	values := make([]any, len(args.Values))
	for i, arg := range args.Values {
		values[i] = ev.expr(arg)
	}
	return values
}

func (ev *evaluator) call(name string, args *Args) any {
	values := ev.args(args)

	switch strings.ToLower(strings.TrimPrefix(name, nsSep)) {
	case "dirname":
		if len(values) == 0 {
			break
		}
		path, ok := values[0].(string)
		if !ok {
			break
		}
		levels := int64(1)
		if len(values) > 1 {
			if n, ok := values[1].(int64); ok && n > 0 {
				levels = n
			}
		}
		for i := int64(0); i < levels; i++ {
			path = filepath.Dir(path)
		}
		return path
	case "array_merge":
		return mergeArrays(values, false)
	}
	return Unknown{Reason: "call to " + name}
}

func (ev *evaluator) staticCall(class, method string, args *Args) any {
	if lastSegment(class) == "ArrayHelper" && strings.EqualFold(method, "merge") {
		return mergeArrays(ev.args(args), true)
	}
	return Unknown{Reason: "call to " + class + "::" + method}
}

// mergeArrays implements array_merge and, when recursive is set, Yii's
// ArrayHelper::merge: string keys override, integer keys append.
func mergeArrays(values []any, recursive bool) any {
	result := NewArray()
	for _, v := range values {
		arr, ok := v.(*Array)
		if !ok {
			return Unknown{Reason: "merge of non-array"}
		}
		arr.Each(func(key string, item any) {
			if isIntKey(key) {
				result.Append(item)
				return
			}
			if recursive {
				existing, eok := result.values[key].(*Array)
				incoming, iok := item.(*Array)
				if eok && iok {
					result.Set(key, mergeArrays([]any{existing, incoming}, true))
					return
				}
			}
			result.Set(key, item)
		})
	}
	return result
}

func (ev *evaluator) stringLiteral(raw string) any {
	if len(raw) < 2 {
		return Unknown{Reason: "malformed string"}
	}
	body := raw[1 : len(raw)-1]
	if raw[0] == '\'' {
		return unquoteSingle(body)
	}
	value, ok := unquoteDouble(body, ev.vars)
	if !ok {
		return Unknown{Reason: "interpolated string"}
	}
	return value
}

// heredoc decodes a heredoc or nowdoc body. The indentation of the closing
// label is removed from every line, as PHP does.
func (ev *evaluator) heredoc(h *Heredoc) any {
	indent := h.Close[:len(h.Close)-len(strings.TrimLeft(h.Close, " \t"))]
	lines := make([]string, len(h.Lines))
	for i, line := range h.Lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}
	body := strings.TrimSuffix(strings.TrimSuffix(strings.Join(lines, ""), "\n"), "\r")

	if strings.Contains(h.Open, "'") {
		return body
	}
	value, ok := unquoteDouble(body, ev.vars)
	if !ok {
		return Unknown{Reason: "interpolated heredoc"}
	}
	return value
}

// unquoteSingle decodes a single-quoted PHP string body where only \\ and \'
// are escapes.
func unquoteSingle(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == '\'') {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// unquoteDouble decodes a double-quoted PHP string body. Simple `$name` and
// `{$name}` interpolation is resolved from vars; anything else fails.
func unquoteDouble(body string, vars map[string]any) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'v':
				b.WriteByte('\v')
			case 'f':
				b.WriteByte('\f')
			case 'e':
				b.WriteByte(0x1b)
			case '0':
				b.WriteByte(0)
			case '\\', '$', '"':
				b.WriteByte(body[i])
			default:
				b.WriteByte('\\')
				b.WriteByte(body[i])
			}
		case c == '$' || (c == '{' && i+1 < len(body) && body[i+1] == '$'):
			braced := c == '{'
			start := i + 1
			if braced {
				start = i + 2
			}
			end := start
			for end < len(body) && isIdentByte(body[end]) {
				end++
			}
			if end == start {
				if braced {
					return "", false
				}
				b.WriteByte(c)
				continue
			}
			if braced {
				if end >= len(body) || body[end] != '}' {
					return "", false
				}
			}
			value, ok := stringValue(vars[body[start:end]])
			if _, defined := vars[body[start:end]]; !defined || !ok {
				return "", false
			}
			b.WriteString(value)
			i = end - 1
			if braced {
				i = end
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 0x80 || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
