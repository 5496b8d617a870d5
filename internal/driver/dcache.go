package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"statescan/internal/grammar"
	"statescan/internal/source"
	"statescan/internal/token"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest identifies a cache entry.
type Digest [32]byte

// DiskCache хранит результаты сканирования файлов на диске, по ключу
// из содержимого файла и параметров грамматики.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the msgpack record stored per cache entry.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Grammar string
	Path    string
	Hash    Digest // content hash of the scanned file
	Count   uint32
	Tokens  []CachedToken
}

// CachedToken is the on-disk form of token.Token[grammar.Kind].
type CachedToken struct {
	Offset uint64
	Line   uint64
	Col    uint64
	Kind   uint8
	Text   string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens (and creates) a cache rooted at dir.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "tokens", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог, чтобы параллельный Get не увидел половину
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// cacheKey: H(schema || grammar || reader opts || max pending || content hash).
func cacheKey(file *source.File, opts Options) Digest {
	h := sha256.New()
	var hdr [2]byte
	binary.LittleEndian.PutUint16(hdr[:], diskCacheSchemaVersion)
	_, _ = h.Write(hdr[:])
	_, _ = h.Write([]byte(opts.Grammar))
	_, _ = h.Write([]byte{0, boolByte(opts.Reader.Normalize), boolByte(opts.Reader.StripBOM)})
	var mp [8]byte
	binary.LittleEndian.PutUint64(mp[:], uint64(max(opts.Scan.MaxPending, 0)))
	_, _ = h.Write(mp[:])
	_, _ = h.Write(file.Hash[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func newDiskPayload(grammarName string, file *source.File, toks []token.Token[grammar.Kind]) *DiskPayload {
	count, err := safecast.Conv[uint32](len(toks))
	if err != nil {
		// слишком много токенов для одной записи — не кэшируем
		return nil
	}
	payload := &DiskPayload{
		Schema:  diskCacheSchemaVersion,
		Grammar: grammarName,
		Path:    file.Path,
		Hash:    file.Hash,
		Count:   count,
		Tokens:  make([]CachedToken, len(toks)),
	}
	for i, tok := range toks {
		payload.Tokens[i] = CachedToken{
			Offset: tok.Pos.Offset,
			Line:   tok.Pos.Line,
			Col:    tok.Pos.Col,
			Kind:   uint8(tok.Kind),
			Text:   tok.Text,
		}
	}
	return payload
}

// tokens restores the token slice; ok is false for a stale or damaged payload.
func (p *DiskPayload) tokens() ([]token.Token[grammar.Kind], bool) {
	if p.Schema != diskCacheSchemaVersion || int(p.Count) != len(p.Tokens) {
		return nil, false
	}
	toks := make([]token.Token[grammar.Kind], len(p.Tokens))
	for i, ct := range p.Tokens {
		toks[i] = token.Token[grammar.Kind]{
			Pos:  source.Pos{Offset: ct.Offset, Line: ct.Line, Col: ct.Col},
			Kind: grammar.Kind(ct.Kind),
			Text: ct.Text,
		}
	}
	return toks, true
}
