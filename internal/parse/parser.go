package parse

import (
	"fmt"
	"strconv"
	"strings"

	"cborgen/internal/common"
	"cborgen/internal/decl"
)

type parser struct {
	toks []token
	pos  int
	// aliases maps typedef names to their underlying descriptor, so member
	// declarations can be expanded the way the preprocessor-free source meant
	// them.
	aliases map[string]decl.TypeDesc
	set     *decl.StructSet
}

// File parses header source into the declaration model.
func File(src []byte) (*decl.StructSet, error) {
	toks, err := lex(string(src))
	if err != nil {
		return nil, err
	}

	p := &parser{
		toks:    toks,
		aliases: make(map[string]decl.TypeDesc),
		set:     decl.NewStructSet(),
	}

	if err := p.file(); err != nil {
		return nil, err
	}

	return p.set, nil
}

func (p *parser) cur() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) accept(text string) bool {
	if p.cur().kind != tokEOF && p.cur().text == text {
		p.pos++
		return true
	}

	return false
}

func (p *parser) file() error {
	for p.cur().kind != tokEOF {
		var err error

		switch p.cur().text {
		case "typedef":
			err = p.typedef()
		case "struct":
			err = p.topStruct()
		default:
			err = p.skipStatement()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// topStruct handles "struct Tag { ... };" definitions as well as forward
// declarations and variable declarations, which are skipped.
func (p *parser) topStruct() error {
	p.next() // struct

	tag := ""
	if p.cur().kind == tokIdent {
		tag = p.next().text
	}

	if !p.accept("{") {
		// Forward declaration or variable declaration.
		return p.skipStatement()
	}

	members, err := p.members()
	if err != nil {
		return err
	}

	if err := p.skipStatement(); err != nil {
		return err
	}

	if tag == "" {
		// Anonymous and unbound: unreferenceable, dropped from the model.
		return nil
	}

	return p.set.Add(&decl.StructDef{Name: tag, Tagged: true, Members: members})
}

func (p *parser) typedef() error {
	p.next() // typedef

	switch p.cur().text {
	case "struct":
		return p.typedefStruct()
	case "union", "enum":
		// Not representable on the wire; the alias is simply not recorded, so
		// uses of it classify as unrecognized.
		return p.skipStatement()
	}

	// Scalar or alias typedef: "typedef unsigned long long u64;",
	// "typedef Point P;".
	var (
		words []string
		ptr   int
	)

	for p.cur().kind != tokEOF && p.cur().text != ";" {
		t := p.next()

		switch {
		case t.text == "*":
			ptr++
		case t.kind == tokIdent:
			words = append(words, t.text)
		default:
			// Array or function typedefs are outside the subset.
			return p.skipStatement()
		}
	}

	p.accept(";")

	if len(words) < 2 {
		return nil
	}

	alias := words[len(words)-1]
	base := p.baseDesc(words[:len(words)-1])
	base.PtrDepth += ptr
	p.aliases[alias] = base

	return nil
}

func (p *parser) typedefStruct() error {
	p.next() // struct

	tag := ""
	if p.cur().kind == tokIdent {
		tag = p.next().text
	}

	if !p.accept("{") {
		// "typedef struct Tag Alias;"
		return p.typedefStructAlias(tag)
	}

	members, err := p.members()
	if err != nil {
		return err
	}

	ptr := 0
	for p.accept("*") {
		ptr++
	}

	alias := ""
	if p.cur().kind == tokIdent {
		alias = p.next().text
	}

	if err := p.skipStatement(); err != nil {
		return err
	}

	name := tag
	tagged := true

	if name == "" {
		if alias == "" || ptr > 0 {
			// Anonymous with no by-value name to give the struct: a
			// pointer alias alone cannot stand in for one. Dropped.
			return nil
		}

		// "typedef struct { ... } Alias;" names the anonymous struct.
		name = alias
		tagged = false
	}

	if err := p.set.Add(&decl.StructDef{Name: name, Tagged: tagged, Members: members}); err != nil {
		return err
	}

	if alias != "" && alias != name {
		p.aliases[alias] = decl.TypeDesc{IsStruct: true, Struct: name, PtrDepth: ptr}
	}

	return nil
}

func (p *parser) typedefStructAlias(tag string) error {
	ptr := 0
	for p.accept("*") {
		ptr++
	}

	if p.cur().kind != tokIdent {
		return p.skipStatement()
	}

	alias := p.next().text
	if err := p.skipStatement(); err != nil {
		return err
	}

	if tag != "" {
		p.aliases[alias] = decl.TypeDesc{IsStruct: true, Struct: tag, PtrDepth: ptr}
	}

	return nil
}

// members parses declarations until the closing brace of the struct body.
func (p *parser) members() ([]decl.MemberDef, error) {
	var out []decl.MemberDef

	for {
		if p.accept("}") {
			return out, nil
		}

		if p.cur().kind == tokEOF {
			return nil, fmt.Errorf("line %d: unexpected end of input in struct body", p.cur().line)
		}

		ms, err := p.member()
		if err != nil {
			return nil, err
		}

		out = append(out, ms...)
	}
}

// member parses one member statement, which may declare several members
// ("int a, b;"). The statement is collected whole first; interpreting a flat
// token list is simpler than predicting declarator shapes.
func (p *parser) member() ([]decl.MemberDef, error) {
	stmt, err := p.collectStatement()
	if err != nil {
		return nil, err
	}

	if len(stmt) == 0 {
		return nil, nil
	}

	if idx := indexText(stmt, "("); idx >= 0 {
		return parseFunctionMember(stmt, idx)
	}

	base, k, err := p.parseBase(stmt)
	if err != nil {
		return nil, err
	}

	return parseDeclarators(stmt, k, base)
}

// collectStatement consumes tokens through the terminating semicolon,
// balancing braces and parentheses so inline bodies do not end it early.
func (p *parser) collectStatement() ([]token, error) {
	var (
		stmt  []token
		depth int
	)

	for {
		t := p.cur()

		if t.kind == tokEOF {
			return nil, fmt.Errorf("line %d: unexpected end of input in member declaration", t.line)
		}

		if t.text == ";" && depth == 0 {
			p.next()
			return stmt, nil
		}

		if t.text == "{" || t.text == "(" {
			depth++
		}

		if t.text == "}" || t.text == ")" {
			depth--
		}

		stmt = append(stmt, p.next())
	}
}

func parseFunctionMember(stmt []token, open int) ([]decl.MemberDef, error) {
	j := open + 1
	for j < len(stmt) && stmt[j].text == "*" {
		j++
	}

	if j >= len(stmt) || stmt[j].kind != tokIdent {
		return nil, fmt.Errorf("line %d: cannot determine member name in function declarator", stmt[0].line)
	}

	return []decl.MemberDef{{Name: stmt[j].text, Type: decl.TypeDesc{IsFunc: true}}}, nil
}

// parseBase interprets the leading type tokens of a member statement and
// returns the base descriptor plus the index where declarators start.
func (p *parser) parseBase(stmt []token) (decl.TypeDesc, int, error) {
	switch stmt[0].text {
	case "union":
		return parseTaggedBase(stmt, decl.TypeDesc{IsUnion: true}, true)
	case "struct":
		return parseTaggedBase(stmt, decl.TypeDesc{IsStruct: true}, false)
	case "enum":
		d, k, err := parseTaggedBase(stmt, decl.TypeDesc{}, true)
		if err == nil {
			d.Base = strings.TrimSpace("enum " + d.Struct)
			d.Struct = ""
		}

		return d, k, err
	}

	var words []string

	k := 0
	for k < len(stmt) && stmt[k].kind == tokIdent {
		w := stmt[k].text

		if isTypeKeyword(w) || w == "const" || w == "volatile" {
			words = append(words, w)
			k++
			continue
		}

		// A non-keyword identifier is the base type only when no base has
		// been collected yet; otherwise it is the declarator name.
		if !hasBaseWord(words) {
			words = append(words, w)
			k++
			continue
		}

		break
	}

	if !hasBaseWord(words) {
		return decl.TypeDesc{}, 0, fmt.Errorf("line %d: expected member type", stmt[0].line)
	}

	return p.baseDesc(words), k, nil
}

// parseTaggedBase handles struct/union/enum bases: optional tag, optional
// inline body. An inline body makes the type anonymous for classification
// purposes; lifting inline definitions into the model is not supported.
func parseTaggedBase(stmt []token, base decl.TypeDesc, keepTagOnBody bool) (decl.TypeDesc, int, error) {
	k := 1

	if k < len(stmt) && stmt[k].kind == tokIdent {
		base.Struct = stmt[k].text
		k++
	}

	if k < len(stmt) && stmt[k].text == "{" {
		var err error

		k, err = skipBalanced(stmt, k)
		if err != nil {
			return base, k, err
		}

		if !keepTagOnBody {
			base.Struct = ""
		}
	}

	return base, k, nil
}

func parseDeclarators(stmt []token, k int, base decl.TypeDesc) ([]decl.MemberDef, error) {
	var out []decl.MemberDef

	for k < len(stmt) {
		d := base

		for k < len(stmt) && stmt[k].text == "*" {
			d.PtrDepth++
			k++
		}

		if k >= len(stmt) || stmt[k].kind != tokIdent {
			return nil, fmt.Errorf("line %d: expected member name", stmt[0].line)
		}

		name := stmt[k].text
		k++

		for k < len(stmt) && stmt[k].text == "[" {
			var (
				n   int
				err error
			)

			k, n, err = parseDimension(stmt, k)
			if err != nil {
				return nil, err
			}

			d.ArrayLens = append(d.ArrayLens, n)
		}

		// Bit-field widths are irrelevant to the wire shape; skip them.
		if k < len(stmt) && stmt[k].text == ":" {
			k += 2
		}

		out = append(out, decl.MemberDef{Name: name, Type: d})

		if k < len(stmt) && stmt[k].text == "," {
			k++
			continue
		}

		break
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("line %d: expected member name", stmt[0].line)
	}

	return out, nil
}

func parseDimension(stmt []token, k int) (int, int, error) {
	k++ // [

	if k < len(stmt) && stmt[k].text == "]" {
		return k + 1, -1, nil
	}

	if k >= len(stmt) || stmt[k].kind != tokNumber {
		return k, 0, fmt.Errorf("line %d: array dimension must be an integer literal", stmt[0].line)
	}

	n, err := strconv.ParseInt(stmt[k].text, 0, 32)
	if err != nil || n <= 0 {
		return k, 0, fmt.Errorf("line %d: invalid array dimension %q", stmt[k].line, stmt[k].text)
	}

	k++

	if k >= len(stmt) || stmt[k].text != "]" {
		return k, 0, fmt.Errorf("line %d: expected closing bracket in array dimension", stmt[0].line)
	}

	return k + 1, int(n), nil
}

// baseDesc normalizes type words into a descriptor, resolving typedef
// aliases and stripping qualifiers.
func (p *parser) baseDesc(words []string) decl.TypeDesc {
	d := decl.TypeDesc{}

	var tw []string

	for _, w := range words {
		switch w {
		case "const":
			d.Const = true
		case "volatile":
		default:
			tw = append(tw, w)
		}
	}

	if base, ok := common.First(tw); ok && len(tw) == 1 {
		if a, ok := p.aliases[base]; ok {
			a.Const = a.Const || d.Const
			return a
		}
	}

	d.Base = strings.Join(tw, " ")

	return d
}

// skipStatement consumes tokens through the next semicolon at brace/paren
// depth zero. Used for declarations outside the supported subset.
func (p *parser) skipStatement() error {
	depth := 0

	for {
		t := p.cur()

		if t.kind == tokEOF {
			if depth != 0 {
				return fmt.Errorf("line %d: unexpected end of input", t.line)
			}

			return nil
		}

		if t.text == "{" || t.text == "(" {
			depth++
		}

		if t.text == "}" || t.text == ")" {
			depth--
		}

		p.next()

		if t.text == ";" && depth == 0 {
			return nil
		}
	}
}

func skipBalanced(stmt []token, k int) (int, error) {
	depth := 0

	for k < len(stmt) {
		switch stmt[k].text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return k + 1, nil
			}
		}

		k++
	}

	return k, fmt.Errorf("line %d: unbalanced braces in member declaration", stmt[0].line)
}

func indexText(stmt []token, text string) int {
	for i, t := range stmt {
		if t.text == text {
			return i
		}
	}

	return -1
}

func isTypeKeyword(w string) bool {
	switch w {
	case "signed", "unsigned", "short", "long", "int", "char",
		"float", "double", "bool", "_Bool":
		return true
	default:
		return false
	}
}

func hasBaseWord(words []string) bool {
	for _, w := range words {
		if w != "const" && w != "volatile" {
			return true
		}
	}

	return false
}
