package sortedhits

import (
	"encoding/binary"
	"io"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
	"github.com/standardbeagle/pulsedex/internal/types"
)

// hitItemEncodedSize is the fixed on-disk width of one HitItem record:
// WordId(4) + DocId(8) + Enc(2) + ImageId(8) + HasImage(1).
const hitItemEncodedSize = 4 + 8 + 2 + 8 + 1

// EncodeHitItem writes one fixed-width HitItem record.
func EncodeHitItem(w io.Writer, h types.HitItem) error {
	var hasImage uint8
	if h.HasImage {
		hasImage = 1
	}
	fields := []any{
		uint32(h.WordId),
		uint64(h.DocId),
		uint16(h.Enc),
		uint64(h.ImageId),
		hasImage,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

// DecodeHitItem reads one fixed-width HitItem record.
func DecodeHitItem(r io.Reader, shard int, file string) (types.HitItem, error) {
	var wordID uint32
	var docID uint64
	var enc uint16
	var imageID uint64
	var hasImage uint8

	if err := binary.Read(r, binary.LittleEndian, &wordID); err != nil {
		return types.HitItem{}, pdxerrors.NewCorrupted("sortedhits", shard, file, "truncated word_id", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &docID); err != nil {
		return types.HitItem{}, pdxerrors.NewCorrupted("sortedhits", shard, file, "truncated doc_id", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &enc); err != nil {
		return types.HitItem{}, pdxerrors.NewCorrupted("sortedhits", shard, file, "truncated enc", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &imageID); err != nil {
		return types.HitItem{}, pdxerrors.NewCorrupted("sortedhits", shard, file, "truncated image_id", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &hasImage); err != nil {
		return types.HitItem{}, pdxerrors.NewCorrupted("sortedhits", shard, file, "truncated has_image", err)
	}

	return types.HitItem{
		WordId:   types.WordId(wordID),
		DocId:    types.DocId(docID),
		Enc:      types.HitEnc(enc),
		ImageId:  types.DocId(imageID),
		HasImage: hasImage != 0,
	}, nil
}
