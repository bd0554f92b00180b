package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/sghaida/microkernel/di"
	"github.com/zeebo/blake3"
)

// formatVersion is bumped whenever the payload layout changes.
const formatVersion = 1

var magic = []byte("MKC1")

const headerSize = 4 + 32

var (
	// ErrBadMagic is returned for data that is not a container artifact.
	ErrBadMagic = errors.New("compiler: not a container artifact")

	// ErrChecksum is returned when the payload digest does not match.
	ErrChecksum = errors.New("compiler: artifact checksum mismatch")

	// ErrVersion is returned for artifacts written by an incompatible format.
	ErrVersion = errors.New("compiler: unsupported artifact version")
)

// Source records a configuration file a container was built from.
// ModTime is the modification time in Unix nanoseconds, zero when the file
// did not exist at build time.
type Source struct {
	Path    string `cbor:"path"`
	ModTime int64  `cbor:"mtime"`
}

// Artifact is a restored container together with the sources it recorded.
type Artifact struct {
	Container *di.Container
	Sources   []Source
}

type payload struct {
	Version  int         `cbor:"version"`
	Snapshot di.Snapshot `cbor:"snapshot"`
	Sources  []Source    `cbor:"sources,omitempty"`
}

// zstdEncoder and zstdDecoder are reused across calls; EncodeAll and
// DecodeAll are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compiler: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compiler: zstd decoder initialization failed: " + err.Error())
	}
}

// Compiler serializes compiled containers. The zero value is ready to use.
type Compiler struct{}

// New returns a Compiler.
func New() *Compiler { return &Compiler{} }

// Dump encodes a compiled container and its sources into artifact bytes.
func (c *Compiler) Dump(ctr *di.Container, sources []Source) ([]byte, error) {
	snap, err := ctr.Snapshot()
	if err != nil {
		return nil, err
	}
	body, err := encMode.Marshal(payload{Version: formatVersion, Snapshot: snap, Sources: sources})
	if err != nil {
		return nil, fmt.Errorf("compiler: encoding snapshot: %w", err)
	}
	compressed := zstdEncoder.EncodeAll(body, nil)
	sum := blake3.Sum256(compressed)

	out := make([]byte, 0, headerSize+len(compressed))
	out = append(out, magic...)
	out = append(out, sum[:]...)
	out = append(out, compressed...)
	return out, nil
}

// Load verifies and decodes artifact bytes into a compiled container whose
// services are built with factories.
func (c *Compiler) Load(data []byte, factories *di.FactoryRegistry) (*Artifact, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic) {
		return nil, ErrBadMagic
	}
	compressed := data[headerSize:]
	sum := blake3.Sum256(compressed)
	if !bytes.Equal(sum[:], data[4:headerSize]) {
		return nil, ErrChecksum
	}

	body, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compiler: decompressing payload: %w", err)
	}
	var p payload
	if err := decMode.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("compiler: decoding payload: %w", err)
	}
	if p.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, p.Version)
	}

	for k, v := range p.Snapshot.Parameters {
		p.Snapshot.Parameters[k] = normalize(v)
	}
	for id, def := range p.Snapshot.Definitions {
		for i := range def.Arguments {
			def.Arguments[i] = normalize(def.Arguments[i])
		}
		p.Snapshot.Definitions[id] = def
	}

	ctr, err := di.FromSnapshot(p.Snapshot, factories)
	if err != nil {
		return nil, err
	}
	return &Artifact{Container: ctr, Sources: p.Sources}, nil
}

// WriteFile dumps ctr to path atomically, creating the parent directory.
func (c *Compiler) WriteFile(path string, ctr *di.Container, sources []Source) error {
	data, err := c.Dump(ctr, sources)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0o644)
}

// ReadFile loads the artifact stored at path.
func (c *Compiler) ReadFile(path string, factories *di.FactoryRegistry) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.Load(data, factories)
}
