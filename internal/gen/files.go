package gen

import (
	"strings"

	"cborgen/internal/config"
)

// GeneratedFile is one output file.
type GeneratedFile struct {
	Filename string
	Content  []byte
}

// BuildFiles assembles the generated header and source file from the emitted
// codecs. Output is byte-identical across runs for the same input.
func BuildFiles(codecs []StructCodec, opts config.Options) []GeneratedFile {
	return []GeneratedFile{
		{Filename: opts.HeaderName, Content: buildHeader(codecs, opts)},
		{Filename: opts.SourceName, Content: buildSource(codecs, opts)},
	}
}

func buildHeader(codecs []StructCodec, opts config.Options) []byte {
	guard := guardMacro(opts.HeaderName)

	var sb strings.Builder

	sb.WriteString("#ifndef " + guard + "\n")
	sb.WriteString("#define " + guard + "\n\n")
	sb.WriteString("#include <stdbool.h>\n")
	sb.WriteString("#include <stdint.h>\n")
	sb.WriteString("#include <stddef.h>\n")
	sb.WriteString("#include <string.h>\n")
	sb.WriteString("#include \"cbor.h\"\n")

	for _, inc := range opts.Includes {
		sb.WriteString("#include \"" + inc + "\"\n")
	}

	sb.WriteString("\n")

	for _, c := range codecs {
		sb.WriteString(c.EncodeProto + "\n")
		sb.WriteString(c.DecodeProto + "\n\n")
	}

	sb.WriteString("#endif /* " + guard + " */\n")

	return []byte(sb.String())
}

func buildSource(codecs []StructCodec, opts config.Options) []byte {
	var sb strings.Builder

	sb.WriteString("#include \"" + opts.HeaderName + "\"\n\n")

	for i, c := range codecs {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(c.EncodeSrc)
		sb.WriteString("\n")
		sb.WriteString(c.DecodeSrc)
	}

	return []byte(sb.String())
}

// guardMacro derives an include guard from the header file name, e.g.
// "cbor_generated.h" -> "CBOR_GENERATED_H".
func guardMacro(name string) string {
	var sb strings.Builder

	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			continue
		}

		sb.WriteByte('_')
	}

	return sb.String()
}
