package gen

import (
	"fmt"
	"strings"
	"text/template"

	"cborgen/internal/classify"
	"cborgen/internal/common"
)

// keyBufSize bounds decoded map keys. Member names are C identifiers, so
// anything longer than 63 bytes fails the decode.
const keyBufSize = 64

// StructCodec is the generated output for one struct: the procedure bodies
// plus the prototypes that go into the header.
type StructCodec struct {
	Name        string
	EncodeProto string
	DecodeProto string
	EncodeSrc   string
	DecodeSrc   string
}

// Emitter produces encode/decode procedure pairs in dependency order. The
// emitted registry grows as structs are consumed, so by-value delegation can
// only ever point backwards.
type Emitter struct {
	textCapacity int
	emitted      map[string]bool
}

// NewEmitter creates an Emitter. textCapacity is the assumed buffer capacity
// for char pointer members.
func NewEmitter(textCapacity int) *Emitter {
	return &Emitter{textCapacity: textCapacity}
}

// Emit generates one codec per struct, in the given order. The order must
// come from the resolver: a by-value reference to a struct that has not been
// emitted yet is an error.
func (e *Emitter) Emit(ordered []*classify.Struct) ([]StructCodec, error) {
	e.emitted = make(map[string]bool, len(ordered))

	codecs := make([]StructCodec, 0, len(ordered))

	for _, s := range ordered {
		for _, m := range s.EmittedMembers() {
			if m.Class.ByValue() && !e.emitted[m.Class.Target] {
				return nil, fmt.Errorf("struct %s member %s embeds %s before it is emitted",
					s.Name(), m.Name, m.Class.Target)
			}
		}

		codecs = append(codecs, e.emitStruct(s))
		e.emitted[s.Name()] = true
	}

	return codecs, nil
}

func (e *Emitter) emitStruct(s *classify.Struct) StructCodec {
	ctype := s.Def.CType()
	members := s.EmittedMembers()

	encodeProto := fmt.Sprintf("bool encode_%s(const %s* data, CborEncoder* encoder);", s.Name(), ctype)
	decodeProto := fmt.Sprintf("bool decode_%s(%s* data, CborValue* it);", s.Name(), ctype)

	return StructCodec{
		Name:        s.Name(),
		EncodeProto: encodeProto,
		DecodeProto: decodeProto,
		EncodeSrc:   e.renderEncode(s.Name(), ctype, members),
		DecodeSrc:   e.renderDecode(s.Name(), ctype, members),
	}
}

type encodeMember struct {
	Name string
	Body string
}

type encodeData struct {
	Name    string
	CType   string
	Count   int
	Members []encodeMember
}

// A null input struct encodes as a wire null so pointer delegation can pass
// through without a pre-check.
var encodeTemplate = template.Must(template.New("encode").Parse(
	`bool encode_{{.Name}}(const {{.CType}}* data, CborEncoder* encoder) {
    CborError err;
    CborEncoder mapEncoder;

    if (!data) {
        return cbor_encode_null(encoder) == CborNoError;
    }

    err = cbor_encoder_create_map(encoder, &mapEncoder, {{.Count}});
    if (err != CborNoError) return false;
{{range .Members}}
    err = cbor_encode_text_stringz(&mapEncoder, "{{.Name}}");
    if (err != CborNoError) return false;
{{.Body}}{{end}}
    err = cbor_encoder_close_container(encoder, &mapEncoder);
    if (err != CborNoError) return false;
    return true;
}
`))

func (e *Emitter) renderEncode(name, ctype string, members []classify.Member) string {
	data := encodeData{
		Name:  name,
		CType: ctype,
		Count: len(members),
	}

	for _, m := range members {
		data.Members = append(data.Members, encodeMember{
			Name: m.Name,
			Body: e.encodeValue(m),
		})
	}

	var sb strings.Builder
	if err := encodeTemplate.Execute(&sb, data); err != nil {
		panic(fmt.Sprintf("encode template: %v", err))
	}

	return sb.String()
}

// encodeValue renders the value-encoding lines for one member, indented for
// the map encoder scope.
func (e *Emitter) encodeValue(m classify.Member) string {
	w := newCWriter(1)
	field := "data->" + m.Name

	switch m.Class.Cat {
	case classify.CatScalar:
		writeScalarEncode(w, m.Class.Scalar, "mapEncoder", field)

	case classify.CatFixedText:
		w.linef("err = cbor_encode_text_string(&mapEncoder, %s, strlen(%s));", field, field)
		w.line("if (err != CborNoError) return false;")

	case classify.CatTextPointer:
		w.linef("if (!%s) {", field)
		w.in()
		w.line("err = cbor_encode_null(&mapEncoder);")
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("} else {")
		w.in()
		w.linef("err = cbor_encode_text_stringz(&mapEncoder, %s);", field)
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("}")

	case classify.CatNested:
		w.linef("if (!encode_%s(&%s, &mapEncoder)) return false;", m.Class.Target, field)

	case classify.CatNestedPointer:
		w.linef("if (!%s) {", field)
		w.in()
		w.line("err = cbor_encode_null(&mapEncoder);")
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("} else {")
		w.in()
		w.linef("if (!encode_%s(%s, &mapEncoder)) return false;", m.Class.Target, field)
		w.out()
		w.line("}")

	case classify.CatScalarArray, classify.CatNestedArray:
		w.line("{")
		w.in()
		w.line("CborEncoder arrayEncoder;")
		w.line("size_t i;")
		w.linef("err = cbor_encoder_create_array(&mapEncoder, &arrayEncoder, %d);", m.Class.Length)
		w.line("if (err != CborNoError) return false;")
		w.linef("for (i = 0; i < %d; ++i) {", m.Class.Length)
		w.in()

		if m.Class.Cat == classify.CatNestedArray {
			w.linef("if (!encode_%s(&%s[i], &arrayEncoder)) return false;", m.Class.Target, field)
		} else {
			writeScalarEncode(w, m.Class.Scalar, "arrayEncoder", field+"[i]")
		}

		w.out()
		w.line("}")
		w.line("err = cbor_encoder_close_container(&mapEncoder, &arrayEncoder);")
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("}")

	default:
		panic(fmt.Sprintf("unexpected category in emitter: %v", m.Class.Cat))
	}

	return w.String()
}

func writeScalarEncode(w *cWriter, kind classify.Kind, enc, expr string) {
	switch {
	case kind.IsSigned():
		w.linef("err = cbor_encode_int(&%s, (int64_t)%s);", enc, expr)
	case kind.IsUnsigned():
		w.linef("err = cbor_encode_uint(&%s, (uint64_t)%s);", enc, expr)
	case kind == classify.KindFloat32:
		w.linef("err = cbor_encode_float(&%s, %s);", enc, expr)
	case kind == classify.KindFloat64:
		w.linef("err = cbor_encode_double(&%s, %s);", enc, expr)
	default:
		w.linef("err = cbor_encode_boolean(&%s, %s);", enc, expr)
	}

	w.line("if (err != CborNoError) return false;")
}

type decodeData struct {
	Name       string
	CType      string
	KeyBufSize int
	Dispatch   string
}

// The key copy also advances the iterator past the key, so every dispatch
// arm sees the iterator positioned on the value.
var decodeTemplate = template.Must(template.New("decode").Parse(
	`bool decode_{{.Name}}({{.CType}}* data, CborValue* it) {
    CborError err;
    CborValue mapIt;
    char key[{{.KeyBufSize}}];
    size_t keyLen;

    if (!cbor_value_is_map(it)) return false;

    err = cbor_value_enter_container(it, &mapIt);
    if (err != CborNoError) return false;

    while (!cbor_value_at_end(&mapIt)) {
        if (!cbor_value_is_text_string(&mapIt)) return false;

        keyLen = sizeof(key);
        err = cbor_value_copy_text_string(&mapIt, key, &keyLen, &mapIt);
        if (err != CborNoError) return false;

{{.Dispatch}}    }

    err = cbor_value_leave_container(it, &mapIt);
    if (err != CborNoError) return false;
    return true;
}
`))

func (e *Emitter) renderDecode(name, ctype string, members []classify.Member) string {
	data := decodeData{
		Name:       name,
		CType:      ctype,
		KeyBufSize: keyBufSize,
		Dispatch:   e.decodeDispatch(members),
	}

	var sb strings.Builder
	if err := decodeTemplate.Execute(&sb, data); err != nil {
		panic(fmt.Sprintf("decode template: %v", err))
	}

	return sb.String()
}

// decodeDispatch renders the key dispatch chain. Unmatched keys have their
// value skipped unread, so extra wire entries are tolerated. A missing key
// simply never matches, leaving the output field untouched.
func (e *Emitter) decodeDispatch(members []classify.Member) string {
	w := newCWriter(2)

	if common.IsEmpty(members) {
		w.line("err = cbor_value_advance(&mapIt);")
		w.line("if (err != CborNoError) return false;")

		return w.String()
	}

	for i, m := range members {
		open := fmt.Sprintf("if (strcmp(key, \"%s\") == 0) {", m.Name)
		if i > 0 {
			open = "} else " + open
		}

		w.line(open)
		w.in()
		e.decodeValue(w, m)
		w.out()
	}

	w.line("} else {")
	w.in()
	w.line("err = cbor_value_advance(&mapIt);")
	w.line("if (err != CborNoError) return false;")
	w.out()
	w.line("}")

	return w.String()
}

// decodeValue renders the value-consuming lines for one matched member. Every
// arm must leave mapIt positioned on the next key.
func (e *Emitter) decodeValue(w *cWriter, m classify.Member) {
	field := "data->" + m.Name

	switch m.Class.Cat {
	case classify.CatScalar:
		writeScalarDecode(w, m.Class.Scalar, "mapIt", field, m.Type.Base)

	case classify.CatFixedText:
		writeTextDecode(w, "mapIt", field, m.Class.Capacity)

	case classify.CatTextPointer:
		w.line("if (cbor_value_is_null(&mapIt)) {")
		w.in()
		w.linef("%s = NULL;", field)
		w.line("err = cbor_value_advance(&mapIt);")
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("} else {")
		w.in()
		w.linef("if (!%s) return false;", field)
		writeTextDecode(w, "mapIt", field, e.textCapacity)
		w.out()
		w.line("}")

	case classify.CatNested:
		w.linef("if (!decode_%s(&%s, &mapIt)) return false;", m.Class.Target, field)

	case classify.CatNestedPointer:
		w.line("if (cbor_value_is_null(&mapIt)) {")
		w.in()
		w.linef("%s = NULL;", field)
		w.line("err = cbor_value_advance(&mapIt);")
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("} else {")
		w.in()
		w.linef("if (!%s) return false;", field)
		w.linef("if (!decode_%s(%s, &mapIt)) return false;", m.Class.Target, field)
		w.out()
		w.line("}")

	case classify.CatScalarArray, classify.CatNestedArray:
		w.line("{")
		w.in()
		w.line("CborValue arrayIt;")
		w.line("size_t i;")
		w.line("if (!cbor_value_is_array(&mapIt)) return false;")
		w.line("err = cbor_value_enter_container(&mapIt, &arrayIt);")
		w.line("if (err != CborNoError) return false;")
		w.line("for (i = 0; !cbor_value_at_end(&arrayIt); ++i) {")
		w.in()
		w.linef("if (i >= %d) {", m.Class.Length)
		w.in()
		w.line("err = cbor_value_advance(&arrayIt);")
		w.line("if (err != CborNoError) return false;")
		w.line("continue;")
		w.out()
		w.line("}")

		if m.Class.Cat == classify.CatNestedArray {
			w.linef("if (!decode_%s(&%s[i], &arrayIt)) return false;", m.Class.Target, field)
		} else {
			writeScalarDecode(w, m.Class.Scalar, "arrayIt", field+"[i]", m.Type.Base)
		}

		w.out()
		w.line("}")
		w.line("err = cbor_value_leave_container(&mapIt, &arrayIt);")
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("}")

	default:
		panic(fmt.Sprintf("unexpected category in emitter: %v", m.Class.Cat))
	}
}

// writeScalarDecode consumes one scalar value from the iterator it into expr.
// Integer kinds go through a 64-bit intermediate and cast down to the
// declared type; floats accept either wire width.
func writeScalarDecode(w *cWriter, kind classify.Kind, it, expr, ctype string) {
	switch {
	case kind.IsSigned():
		w.line("{")
		w.in()
		w.line("int64_t val;")
		w.linef("if (!cbor_value_is_integer(&%s)) return false;", it)
		w.linef("err = cbor_value_get_int64(&%s, &val);", it)
		w.line("if (err != CborNoError) return false;")
		w.linef("%s = (%s)val;", expr, ctype)
		w.out()
		w.line("}")

	case kind.IsUnsigned():
		w.line("{")
		w.in()
		w.line("uint64_t val;")
		w.linef("if (!cbor_value_is_unsigned_integer(&%s)) return false;", it)
		w.linef("err = cbor_value_get_uint64(&%s, &val);", it)
		w.line("if (err != CborNoError) return false;")
		w.linef("%s = (%s)val;", expr, ctype)
		w.out()
		w.line("}")

	case kind.IsFloat():
		w.line("{")
		w.in()
		w.line("double val;")
		w.linef("if (cbor_value_is_float(&%s)) {", it)
		w.in()
		w.line("float f;")
		w.linef("err = cbor_value_get_float(&%s, &f);", it)
		w.line("if (err != CborNoError) return false;")
		w.line("val = (double)f;")
		w.out()
		w.linef("} else if (cbor_value_is_double(&%s)) {", it)
		w.in()
		w.linef("err = cbor_value_get_double(&%s, &val);", it)
		w.line("if (err != CborNoError) return false;")
		w.out()
		w.line("} else {")
		w.in()
		w.line("return false;")
		w.out()
		w.line("}")
		w.linef("%s = (%s)val;", expr, ctype)
		w.out()
		w.line("}")

	default:
		w.linef("if (!cbor_value_is_boolean(&%s)) return false;", it)
		w.linef("err = cbor_value_get_boolean(&%s, &%s);", it, expr)
		w.line("if (err != CborNoError) return false;")
	}

	w.linef("err = cbor_value_advance(&%s);", it)
	w.line("if (err != CborNoError) return false;")
}

// writeTextDecode consumes a text value into a buffer of the given capacity.
// The length guard runs before anything is written; the copy itself advances
// the iterator.
func writeTextDecode(w *cWriter, it, buf string, capacity int) {
	w.line("{")
	w.in()
	w.line("size_t len;")
	w.linef("if (!cbor_value_is_text_string(&%s)) return false;", it)
	w.linef("err = cbor_value_get_string_length(&%s, &len);", it)
	w.line("if (err != CborNoError) return false;")
	w.linef("if (len >= %d) return false;", capacity)
	w.linef("memset(%s, 0, %d);", buf, capacity)
	w.linef("len = %d;", capacity)
	w.linef("err = cbor_value_copy_text_string(&%s, %s, &len, &%s);", it, buf, it)
	w.line("if (err != CborNoError) return false;")
	w.out()
	w.line("}")
}

// cWriter accumulates C source lines at a tracked indent level.
type cWriter struct {
	sb     strings.Builder
	indent int
}

func newCWriter(indent int) *cWriter {
	return &cWriter{indent: indent}
}

func (w *cWriter) in()  { w.indent++ }
func (w *cWriter) out() { w.indent-- }

func (w *cWriter) line(s string) {
	w.sb.WriteString(strings.Repeat("    ", w.indent))
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *cWriter) linef(format string, args ...any) {
	w.line(fmt.Sprintf(format, args...))
}

func (w *cWriter) String() string {
	return w.sb.String()
}
