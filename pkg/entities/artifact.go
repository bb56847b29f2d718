package entities

// MediaBlob is a raw downloaded image plus its declared or guessed encoding.
// It exists only between fetch and normalization.
type MediaBlob struct {
	Bytes    []byte
	Encoding Encoding
}

type Encoding int

const (
	// EncodingUnknown means the upstream did not declare an encoding and
	// the bytes have not been sniffed yet
	EncodingUnknown Encoding = iota

	EncodingJPEG
	EncodingPNG
	EncodingGIF
	EncodingWebP
)

// IsAnimation reports whether the encoding is one of the animated formats
// that are delivered without normalization.
func (e Encoding) IsAnimation() bool {
	return e == EncodingGIF || e == EncodingWebP
}

// NormalizedArtifact is a platform-deliverable form of a media blob. A photo
// artifact holds re-encoded (or passed-through animated) image bytes, a
// document artifact holds a single-page PDF. One delivery attempt consumes it.
type NormalizedArtifact struct {
	Kind  ArtifactKind
	Bytes []byte
}

type ArtifactKind int

const (
	// ArtifactKindPhoto is sent through the photo-send path with retries
	ArtifactKindPhoto ArtifactKind = iota

	// ArtifactKindDocument is an oversized image repackaged as a PDF,
	// sent through the document path in a single attempt
	ArtifactKindDocument
)
