// Package segio implements the segmented file format for stage files (no
// stage's Run uses it; stages exchange gob shards through internal/stageio):
// a logical file split across shards named "<name>.<shard>",
// each shard a concatenation of compressed blocks, with a side file
// "<name>.<shard>.comp_size" mirroring just the block-length headers so a
// coordinator can slice the file into block ranges for parallel dispatch
// without decompressing anything.
package segio

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
)

// BlockHeader is the 8-byte (compressed_len, uncompressed_len) pair written
// before every block's payload, and mirrored verbatim into the ".comp_size"
// side file.
type BlockHeader struct {
	CompressedLen   uint32
	UncompressedLen uint32
}

const blockHeaderSize = 8

// ShardPath returns the data-file path for one shard of a named segmented
// file rooted at dir.
func ShardPath(dir, name string, shard int) string {
	return fmt.Sprintf("%s/%s.%d", dir, name, shard)
}

// SideIndexPath returns the ".comp_size" side-file path for one shard.
func SideIndexPath(dir, name string, shard int) string {
	return ShardPath(dir, name, shard) + ".comp_size"
}

// Writer appends length-delimited, flate-compressed blocks to one shard of a
// segmented file, mirroring each block's header into the side index as it
// goes. Blocks are flushed explicitly by the caller (one block per logical
// record batch keeps block ranges meaningful dispatch units); Close flushes
// any buffered data as a final block.
type Writer struct {
	data    *os.File
	index   *os.File
	pending bytes.Buffer
}

// CreateWriter opens (truncating) the data and side-index files for one
// shard of name under dir.
func CreateWriter(dir, name string, shard int) (*Writer, error) {
	dataPath := ShardPath(dir, name, shard)
	indexPath := SideIndexPath(dir, name, shard)

	data, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("segio: create %s: %w", dataPath, err)
	}
	index, err := os.Create(indexPath)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("segio: create %s: %w", indexPath, err)
	}
	return &Writer{data: data, index: index}, nil
}

// Write appends p to the block currently being assembled. It does not itself
// hit the disk; call Flush to close out a block boundary.
func (w *Writer) Write(p []byte) (int, error) {
	return w.pending.Write(p)
}

// Flush compresses everything written since the last Flush into one block,
// appends it to the data file, and mirrors its header into the side index.
// A no-op if nothing is pending.
func (w *Writer) Flush() error {
	if w.pending.Len() == 0 {
		return nil
	}

	uncompressed := w.pending.Bytes()
	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	if err != nil {
		return fmt.Errorf("segio: new flate writer: %w", err)
	}
	if _, err := fw.Write(uncompressed); err != nil {
		return fmt.Errorf("segio: compress block: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("segio: flush flate writer: %w", err)
	}

	hdr := BlockHeader{
		CompressedLen:   uint32(compressed.Len()),
		UncompressedLen: uint32(uncompressed.Len()),
	}
	if err := writeHeader(w.data, hdr); err != nil {
		return err
	}
	if _, err := w.data.Write(compressed.Bytes()); err != nil {
		return fmt.Errorf("segio: write block payload: %w", err)
	}
	if err := writeHeader(w.index, hdr); err != nil {
		return err
	}

	w.pending.Reset()
	return nil
}

// Close flushes any pending block and closes both underlying files.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.data.Close()
		w.index.Close()
		return err
	}
	dataErr := w.data.Close()
	indexErr := w.index.Close()
	if merr := pdxerrors.NewMultiError([]error{dataErr, indexErr}); merr != nil {
		return merr
	}
	return nil
}

func writeHeader(w io.Writer, hdr BlockHeader) error {
	var buf [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], hdr.CompressedLen)
	binary.LittleEndian.PutUint32(buf[4:8], hdr.UncompressedLen)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("segio: write block header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (BlockHeader, error) {
	var buf [blockHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return BlockHeader{}, err
	}
	return BlockHeader{
		CompressedLen:   binary.LittleEndian.Uint32(buf[0:4]),
		UncompressedLen: binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// ReadSideIndex reads every block header recorded for one shard, in block
// order. This is the structure a coordinator slices into block ranges for
// worker dispatch (§5/§6) without ever touching the (possibly much larger)
// data file.
func ReadSideIndex(dir, name string, shard int) ([]BlockHeader, error) {
	path := SideIndexPath(dir, name, shard)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segio: open %s: %w", path, err)
	}
	defer f.Close()

	var headers []BlockHeader
	for {
		hdr, err := readHeader(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pdxerrors.NewCorrupted("segio", shard, path, "truncated block header", err)
		}
		headers = append(headers, hdr)
	}
	return headers, nil
}

// Reader streams decompressed block payloads back out of one shard's data
// file, in block order, validating each block's declared uncompressed
// length against what flate actually produces.
type Reader struct {
	data  *os.File
	path  string
	shard int
}

// OpenReader opens one shard's data file for sequential block reads.
func OpenReader(dir, name string, shard int) (*Reader, error) {
	path := ShardPath(dir, name, shard)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segio: open %s: %w", path, err)
	}
	return &Reader{data: f, path: path, shard: shard}, nil
}

// Next returns the next block's decompressed payload, or io.EOF once every
// block has been consumed.
func (r *Reader) Next() ([]byte, error) {
	hdr, err := readHeader(r.data)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, pdxerrors.NewCorrupted("segio", r.shard, r.path, "truncated block header", err)
	}

	compressed := make([]byte, hdr.CompressedLen)
	if _, err := io.ReadFull(r.data, compressed); err != nil {
		return nil, pdxerrors.NewCorrupted("segio", r.shard, r.path, "truncated block payload", err)
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	uncompressed, err := io.ReadAll(fr)
	if err != nil {
		return nil, pdxerrors.NewCorrupted("segio", r.shard, r.path, "block failed to decompress", err)
	}
	if uint32(len(uncompressed)) != hdr.UncompressedLen {
		return nil, pdxerrors.NewCorrupted("segio", r.shard, r.path, "declared uncompressed length",
			fmt.Errorf("declared %d, decoded %d", hdr.UncompressedLen, len(uncompressed)))
	}
	return uncompressed, nil
}

// Close closes the underlying data file.
func (r *Reader) Close() error {
	return r.data.Close()
}

// ReadAll decompresses every block of one shard and concatenates them, for
// callers (tests, small fixups) that don't need block-range dispatch.
func ReadAll(dir, name string, shard int) ([]byte, error) {
	r, err := OpenReader(dir, name, shard)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	for {
		block, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out.Write(block)
	}
	return out.Bytes(), nil
}
