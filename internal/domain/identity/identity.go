package identity

// Kind discriminates the two session shapes the service accepts.
type Kind string

const (
	KindRegular Kind = "regular"
	KindShare   Kind = "share"
)

// Identity is a resolved acting identity: either a regular authenticated
// user, or a share-link visitor bound to exactly one board. Capability
// checks live here so call sites never branch on raw flags.
type Identity struct {
	Kind        Kind
	Username    string
	Admin       bool
	DisplayName string
	BoardID     string
}

func Regular(username string, admin bool) Identity {
	return Identity{Kind: KindRegular, Username: username, Admin: admin}
}

func Share(displayName, boardID string) Identity {
	return Identity{Kind: KindShare, DisplayName: displayName, BoardID: boardID}
}

func (id Identity) IsZero() bool {
	return id.Kind == ""
}

// IsAdmin: share-link identities can never be admin.
func (id Identity) IsAdmin() bool {
	return id.Kind == KindRegular && id.Admin
}

// CanUnclaim: only regular identities may release squares; share visitors
// cannot unclaim even their own.
func (id Identity) CanUnclaim() bool {
	return id.Kind == KindRegular
}

// CanAct reports whether the identity may mutate the given board at all.
func (id Identity) CanAct(boardID string) bool {
	switch id.Kind {
	case KindRegular:
		return true
	case KindShare:
		return id.BoardID == boardID
	default:
		return false
	}
}

// Key is the claim identity stamped into Square.ClaimedBy.
func (id Identity) Key() string {
	if id.Kind == KindShare {
		return id.DisplayName
	}
	return id.Username
}

// Label is the display name stamped onto claimed squares.
func (id Identity) Label() string {
	if id.Kind == KindShare {
		return id.DisplayName
	}
	return id.Username
}
