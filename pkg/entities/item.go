package entities

// Item is one content entry fetched from the roulette API. It is immutable
// once fetched and owned by the handler that fetched it for the duration of
// one request.
type Item struct {
	// Key is the opaque media key used to resolve the item's image
	Key string

	// Name is the display name shown to the user as a caption
	Name string

	// MediaKind tells stills and animations apart
	MediaKind MediaKind

	// RollCount is the number of randomized slots attached to the item
	RollCount int

	// RollKind selects the numeric range policy for the slots
	RollKind RollKind
}

// HasRolls reports whether the item carries any randomized slots.
func (i Item) HasRolls() bool {
	return i.RollCount > 0
}

type MediaKind int

const (
	// MediaKindStill is a plain still image (jpeg or png)
	MediaKindStill MediaKind = iota

	// MediaKindAnimation is a gif or webp animation, delivered as-is
	MediaKindAnimation
)

// MediaKindFromTag maps the integer tag used by the roulette API to a
// MediaKind. Unknown tags are treated as stills.
func MediaKindFromTag(tag int) MediaKind {
	if tag == 1 {
		return MediaKindAnimation
	}
	return MediaKindStill
}

type RollKind int

const (
	// RollKindDigit rolls a single digit, 0 to 9
	RollKindDigit RollKind = iota

	// RollKindDie rolls a classic die, 1 to 6
	RollKindDie

	// RollKindPercent rolls a percentage, 0 to 99
	RollKindPercent
)

// Range returns the inclusive bounds of the kind's numeric policy.
func (k RollKind) Range() (low, high int) {
	switch k {
	case RollKindDie:
		return 1, 6
	case RollKindPercent:
		return 0, 99
	case RollKindDigit:
		return 0, 9
	default:
		return 0, 9
	}
}

// RollKindFromTag maps the integer tag used by the roulette API to a
// RollKind. Unknown tags fall back to single digits.
func RollKindFromTag(tag int) RollKind {
	switch tag {
	case 1:
		return RollKindDie
	case 2:
		return RollKindPercent
	default:
		return RollKindDigit
	}
}
