package models

// ReactionKind is one of the fixed reactions a user may attach to a post or comment
type ReactionKind string

const (
	ReactionLike  ReactionKind = "like"
	ReactionLove  ReactionKind = "love"
	ReactionSad   ReactionKind = "sad"
	ReactionAngry ReactionKind = "angry"
)

// ReactionKinds lists every supported reaction kind
var ReactionKinds = []ReactionKind{ReactionLike, ReactionLove, ReactionSad, ReactionAngry}

// Valid reports whether k is a supported reaction kind
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionLike, ReactionLove, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// ReactionGroup is the denormalized aggregate for a single reaction kind.
// Invariant: Count == len(Users).
type ReactionGroup struct {
	Count int      `json:"count" bson:"count"`
	Users []string `json:"users" bson:"users"`
}

// ReactionMap holds one aggregate per reaction kind. A user id appears in at
// most one kind's Users set.
type ReactionMap map[ReactionKind]ReactionGroup

// NewReactionMap returns a reaction map with every kind zeroed
func NewReactionMap() ReactionMap {
	m := make(ReactionMap, len(ReactionKinds))
	for _, k := range ReactionKinds {
		m[k] = ReactionGroup{Count: 0, Users: []string{}}
	}
	return m
}

// KindOf returns the kind the user currently reacts with, if any
func (m ReactionMap) KindOf(userID string) (ReactionKind, bool) {
	for k, g := range m {
		for _, u := range g.Users {
			if u == userID {
				return k, true
			}
		}
	}
	return "", false
}

// Has reports whether the user reacts with the given kind
func (m ReactionMap) Has(kind ReactionKind, userID string) bool {
	for _, u := range m[kind].Users {
		if u == userID {
			return true
		}
	}
	return false
}
