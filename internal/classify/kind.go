package classify

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind identifies a scalar storage kind, width-tagged.
type Kind int

const (
	_ Kind = iota // skip zero value, use it as a default (invalid) value for Kind

	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool

	// KindTotal is the total number of kinds defined.
	KindTotal = int(iota) - 1
)

func (k Kind) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k Kind) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k Kind) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k Kind) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k Kind) Bits() int {
	switch k {
	default:
		panic("no meaningful bit width for kind: " + k.String())
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
}

// scalarKinds maps recognized C base type names to scalar kinds. Plain char
// is signed here; that matches the encoder treating it as a small signed
// integer when it appears outside a text context.
var scalarKinds = map[string]Kind{
	"char":        KindInt8,
	"signed char": KindInt8,
	"int8_t":      KindInt8,

	"unsigned char": KindUint8,
	"uint8_t":       KindUint8,

	"short":              KindInt16,
	"short int":          KindInt16,
	"signed short":       KindInt16,
	"signed short int":   KindInt16,
	"int16_t":            KindInt16,
	"unsigned short":     KindUint16,
	"unsigned short int": KindUint16,
	"uint16_t":           KindUint16,

	"int":          KindInt32,
	"signed":       KindInt32,
	"signed int":   KindInt32,
	"int32_t":      KindInt32,
	"unsigned":     KindUint32,
	"unsigned int": KindUint32,
	"uint32_t":     KindUint32,

	"long":                   KindInt64,
	"long int":               KindInt64,
	"signed long":            KindInt64,
	"long long":              KindInt64,
	"long long int":          KindInt64,
	"signed long long":       KindInt64,
	"int64_t":                KindInt64,
	"ssize_t":                KindInt64,
	"unsigned long":          KindUint64,
	"unsigned long int":      KindUint64,
	"unsigned long long":     KindUint64,
	"unsigned long long int": KindUint64,
	"uint64_t":               KindUint64,
	"size_t":                 KindUint64,

	"float":  KindFloat32,
	"double": KindFloat64,

	"bool":  KindBool,
	"_Bool": KindBool,
}

// ScalarKind returns the scalar kind for a recognized C base type name.
func ScalarKind(base string) (Kind, bool) {
	k, ok := scalarKinds[base]
	return k, ok
}
