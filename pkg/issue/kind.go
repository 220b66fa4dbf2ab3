package issue

// Kind classifies an item for grouping purposes.
type Kind int

const (
	// KindRoot items belong to no epic.
	KindRoot Kind = iota
	// KindEpic items are epics and anchor their own cluster.
	KindEpic
	// KindChildOfEpic items reference their owning epic via EpicKey.
	KindChildOfEpic
)

func (k Kind) String() string {
	switch k {
	case KindEpic:
		return "epic"
	case KindChildOfEpic:
		return "child"
	default:
		return "root"
	}
}

// Classify returns the kind of it. An epic is always classified as
// [KindEpic], even if it carries an EpicKey of its own.
func Classify(it Item) Kind {
	switch {
	case it.Type == EpicType:
		return KindEpic
	case it.EpicKey != "":
		return KindChildOfEpic
	default:
		return KindRoot
	}
}

// Kind returns the classification of the item.
func (it Item) Kind() Kind { return Classify(it) }

// ClusterKey returns the key of the cluster the item is drawn in.
func (it Item) ClusterKey() string {
	switch Classify(it) {
	case KindEpic:
		return it.Key
	case KindChildOfEpic:
		return it.EpicKey
	default:
		return RootKey
	}
}
