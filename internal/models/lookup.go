package models

// LookupKind names one of the shared lookup collections
type LookupKind string

const (
	LookupGender    LookupKind = "gender"
	LookupSexuality LookupKind = "sexuality"
	LookupOpenness  LookupKind = "openness"
	LookupTag       LookupKind = "tag"
	LookupType      LookupKind = "type"
	LookupAward     LookupKind = "award"
)

// AllLookupKinds returns every lookup collection
func AllLookupKinds() []LookupKind {
	return []LookupKind{
		LookupGender,
		LookupSexuality,
		LookupOpenness,
		LookupTag,
		LookupType,
		LookupAward,
	}
}

// Valid reports whether the kind is known
func (k LookupKind) Valid() bool {
	for _, kind := range AllLookupKinds() {
		if kind == k {
			return true
		}
	}
	return false
}

// Lookup is an entry in one of the shared lookup collections.
// Description and Image are only used by awards.
type Lookup struct {
	ID          string     `json:"id"`
	Kind        LookupKind `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
}
