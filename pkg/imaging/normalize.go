// Package imaging classifies raw image blobs and converts them into a
// deliverable form. Telegram rejects photos past certain dimension and
// aspect limits, so oversized stills are repackaged as single-page PDF
// documents instead of photos.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/webp"

	e "github.com/Kambucha375/faproulette-bot/pkg/entities"
)

const (
	DefaultMaxDimensionSum = 10000
	DefaultMaxAspectRatio  = 15.0

	jpegQuality = 90
)

// Normalizer decides between photo and document form. The thresholds are
// policy, not contract, and are wired from configuration.
type Normalizer struct {
	// MaxDimensionSum: a still with width+height at or above this is
	// repackaged as a document
	MaxDimensionSum int

	// MaxAspectRatio: a still with height/width at or above this is
	// repackaged as a document
	MaxAspectRatio float64
}

func NewNormalizer(maxDimensionSum int, maxAspectRatio float64) *Normalizer {
	return &Normalizer{
		MaxDimensionSum: maxDimensionSum,
		MaxAspectRatio:  maxAspectRatio,
	}
}

// Normalize converts a blob into a deliverable artifact. Animations pass
// through untouched, they are never size-checked or converted. Stills are
// decoded, classified against the thresholds and re-encoded as a JPEG photo
// or a PDF document. A blob that fails to decode is ErrMediaUnavailable.
func (n *Normalizer) Normalize(blob e.MediaBlob) (e.NormalizedArtifact, error) {
	if blob.Encoding.IsAnimation() {
		return e.NormalizedArtifact{Kind: e.ArtifactKindPhoto, Bytes: blob.Bytes}, nil
	}

	img, format, err := image.Decode(bytes.NewReader(blob.Bytes))
	if err != nil {
		return e.NormalizedArtifact{}, fmt.Errorf("%w: decoding image: %v", e.ErrMediaUnavailable, err)
	}

	// the probe extension can lie about the actual content
	if format == "gif" || format == "webp" {
		return e.NormalizedArtifact{Kind: e.ArtifactKindPhoto, Bytes: blob.Bytes}, nil
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return e.NormalizedArtifact{}, fmt.Errorf("%w: image has empty bounds", e.ErrMediaUnavailable)
	}

	if n.oversized(w, h) {
		doc, err := encodeDocument(img, w, h)
		if err != nil {
			return e.NormalizedArtifact{}, fmt.Errorf("encoding pdf document: %w", err)
		}
		return e.NormalizedArtifact{Kind: e.ArtifactKindDocument, Bytes: doc}, nil
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return e.NormalizedArtifact{}, fmt.Errorf("encoding jpeg photo: %w", err)
	}

	return e.NormalizedArtifact{Kind: e.ArtifactKindPhoto, Bytes: out.Bytes()}, nil
}

func (n *Normalizer) oversized(w, h int) bool {
	if w+h >= n.MaxDimensionSum {
		return true
	}
	return float64(h)/float64(w) >= n.MaxAspectRatio
}

// encodeDocument wraps the image into a one-page PDF sized to the image
// itself, one pixel per point.
func encodeDocument(img image.Image, w, h int) ([]byte, error) {
	var jbuf bytes.Buffer
	if err := jpeg.Encode(&jbuf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding page image: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(w), Ht: float64(h)},
	})
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("page", opts, &jbuf)
	pdf.ImageOptions("page", 0, 0, float64(w), float64(h), false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return out.Bytes(), nil
}
