package grove

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"genogrove/bplustree"
	"genogrove/types"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// File layout:
//
//	header  magic "GGRV" | version(1) | flags(1) | body length(8, LE)
//	body    zstd-compressed when flagZstd is set
//	trailer xxhash64 of the stored body (8, LE)
//
// The decompressed body holds, uvarint framed:
//
//	key type name | order | has payload(1)
//	labels in registry id order
//	keys in arena order: label id+1 (0 = external), value, [payload]
//	trees: label id, bplus tree encoding
//
// Graph edges and the rightmost-leaf caches are not stored; a loaded grove
// has an empty overlay.
var (
	ErrBadMagic        = errors.New("not a grove file")
	ErrVersion         = errors.New("unsupported grove file version")
	ErrChecksum        = errors.New("grove file checksum mismatch")
	ErrKeyTypeMismatch = errors.New("grove file holds a different key type")
	ErrCorrupt         = bplus.ErrCorrupt
)

const (
	fileVersion = 1
	headerSize  = 14
	trailerSize = 8

	flagZstd = 1 << 0
)

var fileMagic = [4]byte{'G', 'G', 'R', 'V'}

// WriteTo serializes the grove to w.
func (g *Grove[V, D, E]) WriteTo(w io.Writer) (int64, error) {
	body, err := g.appendBody(nil)
	if err != nil {
		return 0, err
	}
	rawLen := len(body)
	var flags byte
	if g.opts.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return 0, errors.Wrap(err, "zstd.NewWriter")
		}
		body = enc.EncodeAll(body, nil)
		enc.Close()
		flags |= flagZstd
	}

	hdr := make([]byte, 0, headerSize)
	hdr = append(hdr, fileMagic[:]...)
	hdr = append(hdr, fileVersion, flags)
	hdr = binary.LittleEndian.AppendUint64(hdr, uint64(len(body)))
	trailer := binary.LittleEndian.AppendUint64(nil, xxhash.Sum64(body))

	var total int64
	for _, part := range [][]byte{hdr, body, trailer} {
		n, err := w.Write(part)
		total += int64(n)
		if err != nil {
			return total, errors.Wrap(err, "write grove")
		}
	}
	g.log.Debug("wrote grove",
		zap.String("raw", humanize.Bytes(uint64(rawLen))),
		zap.String("stored", humanize.Bytes(uint64(total))),
		zap.Int("keys", g.keys.len()))
	return total, nil
}

func (g *Grove[V, D, E]) appendBody(dst []byte) ([]byte, error) {
	dst = appendString(dst, g.kt.Name())
	dst = binary.AppendUvarint(dst, uint64(g.Order()))
	withData := hasData[D]()
	dst = append(dst, boolByte(withData))

	labels := g.registry.Labels()
	dst = binary.AppendUvarint(dst, uint64(len(labels)))
	for _, l := range labels {
		dst = appendString(dst, l)
	}

	dst = binary.AppendUvarint(dst, uint64(g.keys.len()))
	var payload []byte
	for ref := 0; ref < g.keys.len(); ref++ {
		k := g.keys.get(uint32(ref))
		var labelRef uint64
		if k.kind == kindIndexed {
			id, _ := g.registry.ID(k.label)
			labelRef = uint64(id) + 1
		}
		dst = binary.AppendUvarint(dst, labelRef)
		dst = g.kt.AppendBinary(dst, k.value)
		if !withData {
			continue
		}
		var err error
		if payload, err = g.codec.AppendData(payload[:0], k.data); err != nil {
			return nil, errors.Wrapf(err, "key %d", ref)
		}
		dst = binary.AppendUvarint(dst, uint64(len(payload)))
		dst = append(dst, payload...)
	}

	dst = binary.AppendUvarint(dst, uint64(g.indices.Len()))
	g.indices.Ascend(func(idx *index[V]) bool {
		dst = binary.AppendUvarint(dst, uint64(idx.id))
		dst = idx.tree.AppendBinary(dst)
		return true
	})
	return dst, nil
}

// ReadGrove decodes a grove written by WriteTo. kt must have the name the
// grove was written with; opts configure the new grove as in New, except
// that the stored order wins.
func ReadGrove[V, D, E any](r io.Reader, kt types.KeyType[V], opts ...Option) (*Grove[V, D, E], error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read grove")
	}
	return decodeGrove[V, D, E](src, kt, opts)
}

// SaveFile writes the grove to path+".tmp" and renames it over path.
func (g *Grove[V, D, E]) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "create grove file")
	}
	if _, err := g.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(err, "sync grove file")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "close grove file")
	}
	return errors.Wrap(os.Rename(tmp, path), "rename grove file")
}

// LoadFile maps path read-only and decodes it. Nothing in the returned
// grove refers to the mapping.
func LoadFile[V, D, E any](path string, kt types.KeyType[V], opts ...Option) (*Grove[V, D, E], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open grove file")
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat grove file")
	}
	if st.Size() < headerSize+trailerSize {
		return nil, errors.Wrapf(ErrBadMagic, "%s: %d bytes", path, st.Size())
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrap(err, "mmap grove file")
	}
	defer m.Unmap()
	g, err := decodeGrove[V, D, E](m, kt, opts)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	g.log.Info("loaded grove",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(st.Size()))),
		zap.Int("indices", g.indices.Len()),
		zap.Int("keys", g.keys.len()))
	return g, nil
}

func decodeGrove[V, D, E any](src []byte, kt types.KeyType[V], opts []Option) (*Grove[V, D, E], error) {
	if len(src) < headerSize+trailerSize || !bytes.Equal(src[:4], fileMagic[:]) {
		return nil, ErrBadMagic
	}
	if src[4] != fileVersion {
		return nil, errors.Wrapf(ErrVersion, "version %d", src[4])
	}
	flags := src[5]
	bodyLen := binary.LittleEndian.Uint64(src[6:headerSize])
	if bodyLen > uint64(len(src)-headerSize-trailerSize) {
		return nil, errors.Wrapf(ErrCorrupt, "body length %d exceeds file", bodyLen)
	}
	body := src[headerSize : headerSize+int(bodyLen)]
	sum := binary.LittleEndian.Uint64(src[headerSize+int(bodyLen):])
	if xxhash.Sum64(body) != sum {
		return nil, ErrChecksum
	}
	if flags&flagZstd != 0 {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "zstd.NewReader")
		}
		defer dec.Close()
		if body, err = dec.DecodeAll(body, nil); err != nil {
			return nil, errors.Wrap(err, "decompress grove body")
		}
	}

	d := &bodyDecoder{src: body}
	name, err := d.string()
	if err != nil {
		return nil, err
	}
	if name != kt.Name() {
		return nil, errors.Wrapf(ErrKeyTypeMismatch, "file has %q, want %q", name, kt.Name())
	}
	order, err := d.uvarint()
	if err != nil {
		return nil, err
	}
	withData, err := d.byte()
	if err != nil {
		return nil, err
	}
	if withData > 1 {
		return nil, errors.Wrapf(ErrCorrupt, "payload flag %d", withData)
	}
	if (withData == 1) != hasData[D]() {
		return nil, errors.Wrapf(ErrKeyTypeMismatch, "payload presence %d", withData)
	}

	g, err := New[V, D, E](kt, append(opts, WithOrder(int(order)))...)
	if err != nil {
		return nil, err
	}

	numLabels, err := d.count()
	if err != nil {
		return nil, err
	}
	labels := make([]string, numLabels)
	for i := range labels {
		if labels[i], err = d.string(); err != nil {
			return nil, err
		}
		if id := g.registry.Register(labels[i]); int(id) != i {
			return nil, errors.Wrapf(ErrCorrupt, "duplicate label %q", labels[i])
		}
	}

	numKeys, err := d.count()
	if err != nil {
		return nil, err
	}
	for ref := 0; ref < numKeys; ref++ {
		labelRef, err := d.uvarint()
		if err != nil {
			return nil, err
		}
		if labelRef > uint64(len(labels)) {
			return nil, errors.Wrapf(ErrCorrupt, "key %d: label id %d", ref, labelRef-1)
		}
		v, n, err := kt.DecodeBinary(d.rest())
		if err != nil {
			return nil, errors.Wrapf(err, "key %d", ref)
		}
		d.off += n
		var data D
		if withData == 1 {
			raw, err := d.bytes()
			if err != nil {
				return nil, err
			}
			if data, err = g.codec.DecodeData(raw); err != nil {
				return nil, errors.Wrapf(err, "key %d", ref)
			}
		}
		if labelRef == 0 {
			g.keys.alloc(v, data, "", kindExternal)
			g.external++
		} else {
			g.keys.alloc(v, data, labels[labelRef-1], kindIndexed)
		}
	}

	numTrees, err := d.count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < numTrees; i++ {
		id, err := d.uvarint()
		if err != nil {
			return nil, err
		}
		if id >= uint64(len(labels)) {
			return nil, errors.Wrapf(ErrCorrupt, "tree label id %d", id)
		}
		tree, n, err := bplus.Decode(kt, d.rest(), g.opts.treeConfig())
		if err != nil {
			return nil, errors.Wrapf(err, "tree %s", labels[id])
		}
		d.off += n
		for _, ref := range tree.Refs() {
			k := g.keys.get(ref)
			if k == nil || k.label != labels[id] {
				return nil, errors.Wrapf(ErrCorrupt, "tree %s refers to key %d", labels[id], ref)
			}
		}
		idx := &index[V]{label: labels[id], id: uint32(id), tree: tree}
		if _, dup := g.indices.ReplaceOrInsert(idx); dup {
			return nil, errors.Wrapf(ErrCorrupt, "tree %s stored twice", labels[id])
		}
	}
	if d.off != len(d.src) {
		return nil, errors.Wrapf(ErrCorrupt, "%d trailing bytes", len(d.src)-d.off)
	}
	return g, nil
}

type bodyDecoder struct {
	src []byte
	off int
}

func (d *bodyDecoder) rest() []byte {
	return d.src[d.off:]
}

func (d *bodyDecoder) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.src[d.off:])
	if n <= 0 {
		return 0, errors.Wrapf(ErrCorrupt, "bad uvarint at offset %d", d.off)
	}
	d.off += n
	return v, nil
}

// count reads a length that must be satisfiable by the remaining input.
func (d *bodyDecoder) count() (int, error) {
	n, err := d.uvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64(len(d.src)-d.off) {
		return 0, errors.Wrapf(ErrCorrupt, "count %d at offset %d", n, d.off)
	}
	return int(n), nil
}

func (d *bodyDecoder) byte() (byte, error) {
	if d.off >= len(d.src) {
		return 0, errors.Wrapf(ErrCorrupt, "unexpected end at offset %d", d.off)
	}
	b := d.src[d.off]
	d.off++
	return b, nil
}

func (d *bodyDecoder) bytes() ([]byte, error) {
	n, err := d.count()
	if err != nil {
		return nil, err
	}
	b := d.src[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *bodyDecoder) string() (string, error) {
	b, err := d.bytes()
	return string(b), err
}

func appendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
