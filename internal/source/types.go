package source

type (
	// FileFlags encodes metadata about a loaded source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the content came from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
	FileNormalizedCRLF
)

// Source is anything that produces characters one at a time.
// Implementations return ErrEndOfInput once exhausted and a *DecodeError
// when the underlying medium cannot produce a valid character.
type Source interface {
	Next() (rune, error)
}

// File captures metadata and content for a single loaded source file.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
