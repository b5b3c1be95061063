package hitlist

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WordLogReader pops sequential local word ids from one division's
// word_log stream (word_log.<c>.div.<d>): a flat sequence of u32 local ids,
// one per non-stop, non-excluded token, in document-token order.
type WordLogReader struct {
	ids []uint32
	pos int
}

// DecodeWordLog reads an entire word_log division stream into memory. These
// streams are bounded by one tokenizer client's division output, small
// enough to hold whole for the duration of one shard's assembly pass.
func DecodeWordLog(r io.Reader) (*WordLogReader, error) {
	var ids []uint32
	for {
		var id uint32
		err := binary.Read(r, binary.LittleEndian, &id)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hitlist: decode word_log: %w", err)
		}
		ids = append(ids, id)
	}
	return &WordLogReader{ids: ids}, nil
}

// Next pops the next local id. ok is false once the stream is exhausted.
func (w *WordLogReader) Next() (local uint32, ok bool) {
	if w.pos >= len(w.ids) {
		return 0, false
	}
	local = w.ids[w.pos]
	w.pos++
	return local, true
}

// Remaining returns how many ids are left unconsumed.
func (w *WordLogReader) Remaining() int { return len(w.ids) - w.pos }

// EncodeWordLog writes a word_log division stream (used by tests and by
// tokenizer-side tooling that feeds this stage).
func EncodeWordLog(w io.Writer, ids []uint32) error {
	for _, id := range ids {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return fmt.Errorf("hitlist: encode word_log: %w", err)
		}
	}
	return nil
}
