package stream

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
)

// Bundle collects the proof streams produced by one batch run.
type Bundle struct {
	// Streams maps job name -> converted stream
	Streams map[string]*Entry

	// Source is the manifest the bundle was built from (for error messages)
	Source string
}

// Entry is one converted stream.
type Entry struct {
	// InitVars is the heap size the proof stream expects before it runs
	InitVars uint32

	// Proof is the encoded proof stream, END included
	Proof []byte
}

const bundleVersion byte = 0x01

// bundleMagic opens every serialized bundle
var bundleMagic = [4]byte{'M', 'M', 'B', 'B'}

// NewBundle creates an empty bundle
func NewBundle(source string) *Bundle {
	return &Bundle{Streams: make(map[string]*Entry), Source: source}
}

// Add stores a stream under name. Names must be unique.
func (b *Bundle) Add(name string, initVars uint32, proof []byte) error {
	if _, ok := b.Streams[name]; ok {
		return fmt.Errorf("bundle already has a stream named %q", name)
	}
	b.Streams[name] = &Entry{InitVars: initVars, Proof: proof}
	return nil
}

// Names returns the stream names in sorted order.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.Streams))
	for name := range b.Streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serialize converts a Bundle to binary format.
// Format:
// - Magic number (4 bytes): "MMBB"
// - Version (1 byte): 0x01
// - Gob-encoded Bundle data
func (b *Bundle) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.Write(bundleMagic[:])
	buf.WriteByte(bundleVersion)

	enc := gob.NewEncoder(buf)
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("bundle gob encoding failed: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeBundle reads data written by Serialize and validates every stream.
func DeserializeBundle(data []byte) (*Bundle, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("bundle data too short")
	}
	if !bytes.Equal(data[:4], bundleMagic[:]) {
		return nil, fmt.Errorf("invalid magic number, expected MMBB")
	}
	if version := data[4]; version != bundleVersion {
		return nil, fmt.Errorf("unsupported bundle version: %d (this binary supports version %d)", version, bundleVersion)
	}

	var bundle Bundle
	if err := gob.NewDecoder(bytes.NewReader(data[5:])).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("bundle gob decoding failed: %w", err)
	}
	if bundle.Streams == nil {
		bundle.Streams = make(map[string]*Entry)
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("bundle validation failed: %w", err)
	}
	return &bundle, nil
}

// Validate checks that every entry holds a proof stream in canonical
// encoding: END-terminated, narrowest operand widths, no trailing bytes.
func (b *Bundle) Validate() error {
	for _, name := range b.Names() {
		e := b.Streams[name]
		if e == nil {
			return fmt.Errorf("stream %q is nil", name)
		}
		cmds, _, err := DecodeProof(e.Proof)
		if err != nil {
			return fmt.Errorf("stream %q: %w", name, err)
		}
		canonical, err := Encode(cmds)
		if err != nil {
			return fmt.Errorf("stream %q: %w", name, err)
		}
		if !bytes.Equal(canonical, e.Proof) {
			return fmt.Errorf("stream %q: not a canonical END-terminated proof stream", name)
		}
	}
	return nil
}
