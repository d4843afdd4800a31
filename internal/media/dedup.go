package media

import (
	"bytes"
	"image"

	"github.com/corona10/goimagehash"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images count as perceptually identical.
const dedupThreshold = 10

// DedupFilter rejects visually duplicate images within one destination's
// download batch, catching near-identical shots that keyword
// categorization missed. The pipeline is single-worker, so the filter
// needs no locking.
type DedupFilter struct {
	hashes []*goimagehash.ImageHash
}

// SeenJPEG decodes encoded image bytes and reports whether a perceptually
// identical image was already recorded. Undecodable or unhashable input is
// accepted as unique: dedup degrades gracefully rather than dropping
// images it cannot judge.
func (d *DedupFilter) SeenJPEG(data []byte) bool {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}
	return d.Seen(img)
}

// Seen reports whether img duplicates a previously recorded image, and
// records it when unique.
func (d *DedupFilter) Seen(img image.Image) bool {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return false
	}

	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < dedupThreshold {
			return true
		}
	}

	d.hashes = append(d.hashes, hash)
	return false
}
