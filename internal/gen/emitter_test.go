package gen

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cborgen/internal/classify"
	"cborgen/internal/config"
	"cborgen/internal/diagnostic"
	"cborgen/internal/parse"
	"cborgen/internal/plan"
)

// emitSource runs header source through parse, classify, and resolve, then
// emits with the default text pointer capacity.
func emitSource(t *testing.T, src string) []StructCodec {
	t.Helper()

	set, err := parse.File([]byte(src))
	require.NoError(t, err)

	var diags diagnostic.Diagnostics

	structs := classify.Set(set, &diags)

	ordered, err := plan.Resolve(structs, &diags)
	require.NoError(t, err)

	codecs, err := NewEmitter(config.DefaultTextPointerCapacity).Emit(ordered)
	require.NoError(t, err)

	return codecs
}

func findCodec(t *testing.T, codecs []StructCodec, name string) StructCodec {
	t.Helper()

	for _, c := range codecs {
		if c.Name == name {
			return c
		}
	}

	spew.Dump(codecs)
	t.Fatalf("no codec for struct %s", name)

	return StructCodec{}
}

func TestEmitter_Emit_ConcreteScenario(t *testing.T) {
	codecs := emitSource(t, `
		struct Record {
			int32_t id;
			char name[8];
			bool active;
		};
	`)

	c := findCodec(t, codecs, "Record")

	assert.Equal(t, "bool encode_Record(const struct Record* data, CborEncoder* encoder);", c.EncodeProto)
	assert.Equal(t, "bool decode_Record(struct Record* data, CborValue* it);", c.DecodeProto)

	enc := c.EncodeSrc
	assert.Contains(t, enc, "cbor_encoder_create_map(encoder, &mapEncoder, 3);")
	assert.Contains(t, enc, `cbor_encode_text_stringz(&mapEncoder, "id");`)
	assert.Contains(t, enc, "cbor_encode_int(&mapEncoder, (int64_t)data->id);")
	assert.Contains(t, enc, `cbor_encode_text_stringz(&mapEncoder, "name");`)
	assert.Contains(t, enc, "cbor_encode_text_string(&mapEncoder, data->name, strlen(data->name));")
	assert.Contains(t, enc, `cbor_encode_text_stringz(&mapEncoder, "active");`)
	assert.Contains(t, enc, "cbor_encode_boolean(&mapEncoder, data->active);")
	assert.Contains(t, enc, "cbor_encoder_close_container(encoder, &mapEncoder);")

	dec := c.DecodeSrc
	assert.Contains(t, dec, "if (!cbor_value_is_map(it)) return false;")
	assert.Contains(t, dec, "char key[64];")
	assert.Contains(t, dec, `if (strcmp(key, "id") == 0) {`)
	assert.Contains(t, dec, "cbor_value_get_int64(&mapIt, &val);")
	assert.Contains(t, dec, "data->id = (int32_t)val;")
	assert.Contains(t, dec, `} else if (strcmp(key, "name") == 0) {`)
	assert.Contains(t, dec, "memset(data->name, 0, 8);")
	assert.Contains(t, dec, `} else if (strcmp(key, "active") == 0) {`)
	assert.Contains(t, dec, "cbor_value_get_boolean(&mapIt, &data->active);")
	assert.Contains(t, dec, "cbor_value_leave_container(it, &mapIt);")
}

func TestEmitter_Emit_NullEncodesForNullInput(t *testing.T) {
	codecs := emitSource(t, `struct S { int x; };`)

	assert.Contains(t, codecs[0].EncodeSrc, "if (!data) {")
	assert.Contains(t, codecs[0].EncodeSrc, "return cbor_encode_null(encoder) == CborNoError;")
}

func TestEmitter_Emit_UnsignedScalar(t *testing.T) {
	codecs := emitSource(t, `
		struct S {
			uint64_t id;
			unsigned short port;
		};
	`)

	enc := codecs[0].EncodeSrc
	assert.Contains(t, enc, "cbor_encode_uint(&mapEncoder, (uint64_t)data->id);")
	assert.Contains(t, enc, "cbor_encode_uint(&mapEncoder, (uint64_t)data->port);")

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "if (!cbor_value_is_unsigned_integer(&mapIt)) return false;")
	assert.Contains(t, dec, "cbor_value_get_uint64(&mapIt, &val);")
	assert.Contains(t, dec, "data->id = (uint64_t)val;")
	assert.Contains(t, dec, "data->port = (unsigned short)val;")
}

func TestEmitter_Emit_FloatAcceptsBothWidths(t *testing.T) {
	codecs := emitSource(t, `
		struct S {
			float x;
			double y;
		};
	`)

	enc := codecs[0].EncodeSrc
	assert.Contains(t, enc, "cbor_encode_float(&mapEncoder, data->x);")
	assert.Contains(t, enc, "cbor_encode_double(&mapEncoder, data->y);")

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "if (cbor_value_is_float(&mapIt)) {")
	assert.Contains(t, dec, "} else if (cbor_value_is_double(&mapIt)) {")
	assert.Contains(t, dec, "data->x = (float)val;")
	assert.Contains(t, dec, "data->y = (double)val;")
}

func TestEmitter_Emit_FixedTextOverflowGuard(t *testing.T) {
	codecs := emitSource(t, `struct S { char name[8]; };`)

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "cbor_value_get_string_length(&mapIt, &len);")
	assert.Contains(t, dec, "if (len >= 8) return false;")
	assert.Contains(t, dec, "memset(data->name, 0, 8);")
	assert.Contains(t, dec, "cbor_value_copy_text_string(&mapIt, data->name, &len, &mapIt);")

	// The guard runs before the buffer is touched.
	assert.Less(t,
		indexOf(t, dec, "if (len >= 8) return false;"),
		indexOf(t, dec, "memset(data->name, 0, 8);"))
}

func TestEmitter_Emit_TextPointerNullBranches(t *testing.T) {
	codecs := emitSource(t, `struct S { char *email; };`)

	enc := codecs[0].EncodeSrc
	assert.Contains(t, enc, "if (!data->email) {")
	assert.Contains(t, enc, "cbor_encode_null(&mapEncoder);")
	assert.Contains(t, enc, "cbor_encode_text_stringz(&mapEncoder, data->email);")

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "if (cbor_value_is_null(&mapIt)) {")
	assert.Contains(t, dec, "data->email = NULL;")
	assert.Contains(t, dec, "if (!data->email) return false;")
	assert.Contains(t, dec, "if (len >= 256) return false;")
	assert.Contains(t, dec, "memset(data->email, 0, 256);")
}

func TestEmitter_Emit_TextPointerConfiguredCapacity(t *testing.T) {
	set, err := parse.File([]byte(`struct S { char *email; };`))
	require.NoError(t, err)

	var diags diagnostic.Diagnostics

	ordered, err := plan.Resolve(classify.Set(set, &diags), &diags)
	require.NoError(t, err)

	codecs, err := NewEmitter(32).Emit(ordered)
	require.NoError(t, err)

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "if (len >= 32) return false;")
	assert.Contains(t, dec, "memset(data->email, 0, 32);")
	assert.NotContains(t, dec, "256")
}

func TestEmitter_Emit_NestedDelegation(t *testing.T) {
	codecs := emitSource(t, `
		struct Point { int x; int y; };
		struct Shape { struct Point origin; };
	`)

	c := findCodec(t, codecs, "Shape")
	assert.Contains(t, c.EncodeSrc, "if (!encode_Point(&data->origin, &mapEncoder)) return false;")
	assert.Contains(t, c.DecodeSrc, "if (!decode_Point(&data->origin, &mapIt)) return false;")
}

func TestEmitter_Emit_NestedPointerBranches(t *testing.T) {
	codecs := emitSource(t, `
		struct Address { char city[16]; };
		struct Person { struct Address *home; };
	`)

	c := findCodec(t, codecs, "Person")

	assert.Contains(t, c.EncodeSrc, "if (!data->home) {")
	assert.Contains(t, c.EncodeSrc, "if (!encode_Address(data->home, &mapEncoder)) return false;")

	dec := c.DecodeSrc
	assert.Contains(t, dec, "data->home = NULL;")
	assert.Contains(t, dec, "if (!data->home) return false;")
	assert.Contains(t, dec, "if (!decode_Address(data->home, &mapIt)) return false;")
}

func TestEmitter_Emit_ScalarArray(t *testing.T) {
	codecs := emitSource(t, `struct S { int scores[5]; };`)

	enc := codecs[0].EncodeSrc
	assert.Contains(t, enc, "cbor_encoder_create_array(&mapEncoder, &arrayEncoder, 5);")
	assert.Contains(t, enc, "for (i = 0; i < 5; ++i) {")
	assert.Contains(t, enc, "cbor_encode_int(&arrayEncoder, (int64_t)data->scores[i]);")
	assert.Contains(t, enc, "cbor_encoder_close_container(&mapEncoder, &arrayEncoder);")

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "if (!cbor_value_is_array(&mapIt)) return false;")
	assert.Contains(t, dec, "for (i = 0; !cbor_value_at_end(&arrayIt); ++i) {")
	assert.Contains(t, dec, "if (i >= 5) {")
	assert.Contains(t, dec, "cbor_value_advance(&arrayIt);")
	assert.Contains(t, dec, "data->scores[i] = (int)val;")
	assert.Contains(t, dec, "cbor_value_leave_container(&mapIt, &arrayIt);")
}

func TestEmitter_Emit_NestedArray(t *testing.T) {
	codecs := emitSource(t, `
		struct Point { int x; };
		struct Path { struct Point points[4]; };
	`)

	c := findCodec(t, codecs, "Path")
	assert.Contains(t, c.EncodeSrc, "if (!encode_Point(&data->points[i], &arrayEncoder)) return false;")
	assert.Contains(t, c.DecodeSrc, "if (!decode_Point(&data->points[i], &arrayIt)) return false;")
	assert.Contains(t, c.DecodeSrc, "if (i >= 4) {")
}

func TestEmitter_Emit_UnknownKeySkipped(t *testing.T) {
	codecs := emitSource(t, `struct S { int x; };`)

	dec := codecs[0].DecodeSrc
	assert.Contains(t, dec, "} else {")
	assert.Contains(t, dec, "cbor_value_advance(&mapIt);")
}

func TestEmitter_Emit_MissingKeyLeavesFieldUntouched(t *testing.T) {
	codecs := emitSource(t, `
		struct S {
			int32_t id;
			bool active;
		};
	`)

	dec := codecs[0].DecodeSrc

	// Each field is written exactly once, inside its own dispatch arm. A key
	// absent from the wire never matches, so the caller's value stays put.
	assert.Equal(t, 1, strings.Count(dec, "data->id = "))
	assert.Equal(t, 1, strings.Count(dec, "&data->active"))

	// After the key loop the function only closes the container and reports
	// success. No presence bookkeeping, no writes.
	loop := indexOf(t, dec, "while (!cbor_value_at_end(&mapIt))")
	tail := dec[loop:]
	tail = tail[indexOf(t, tail, "\n    }\n"):]

	assert.Equal(t, "\n    }\n\n"+
		"    err = cbor_value_leave_container(it, &mapIt);\n"+
		"    if (err != CborNoError) return false;\n"+
		"    return true;\n"+
		"}\n", tail)
}

func TestEmitter_Emit_EmptyStruct(t *testing.T) {
	codecs := emitSource(t, `struct Empty { };`)

	c := codecs[0]
	assert.Contains(t, c.EncodeSrc, "cbor_encoder_create_map(encoder, &mapEncoder, 0);")
	assert.NotContains(t, c.DecodeSrc, "strcmp")
	assert.Contains(t, c.DecodeSrc, "cbor_value_advance(&mapIt);")
}

func TestEmitter_Emit_UnsupportedMembersAbsentFromWire(t *testing.T) {
	set, err := parse.File([]byte(`
		struct S {
			int a;
			union { int u; } mix;
			void (*cb)(int);
			int b;
		};
	`))
	require.NoError(t, err)

	var diags diagnostic.Diagnostics

	structs := classify.Set(set, &diags)
	assert.Len(t, diags.Warnings, 2)

	ordered, err := plan.Resolve(structs, &diags)
	require.NoError(t, err)

	codecs, err := NewEmitter(config.DefaultTextPointerCapacity).Emit(ordered)
	require.NoError(t, err)

	enc := codecs[0].EncodeSrc
	assert.Contains(t, enc, "cbor_encoder_create_map(encoder, &mapEncoder, 2);")
	assert.NotContains(t, enc, "mix")
	assert.NotContains(t, enc, "cb")
	assert.NotContains(t, codecs[0].DecodeSrc, `strcmp(key, "mix")`)
}

func TestEmitter_Emit_TypedefStructUsesAlias(t *testing.T) {
	codecs := emitSource(t, `
		typedef struct {
			int x;
		} Point;
	`)

	c := codecs[0]
	assert.Equal(t, "bool encode_Point(const Point* data, CborEncoder* encoder);", c.EncodeProto)
	assert.Contains(t, c.DecodeSrc, "bool decode_Point(Point* data, CborValue* it) {")
}

func TestEmitter_Emit_RejectsForwardByValueReference(t *testing.T) {
	set, err := parse.File([]byte(`
		struct Person { struct Address home; };
		struct Address { int n; };
	`))
	require.NoError(t, err)

	var diags diagnostic.Diagnostics

	structs := classify.Set(set, &diags)

	// Deliberately skip the resolver: declaration order has Person first.
	_, err = NewEmitter(config.DefaultTextPointerCapacity).Emit(structs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before it is emitted")
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()

	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "missing %q", needle)

	return idx
}
