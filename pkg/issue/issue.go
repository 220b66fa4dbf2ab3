package issue

// RootKey is the cluster key for items and links that belong to no epic.
const RootKey = "root"

// EpicType is the item type of epics and the link type of containment links.
const EpicType = "Epic"

// Analysis is the per-item bundle computed by the tracker analysis step.
type Analysis struct {
	TotalScore float64  `json:"totalScore" yaml:"totalScore" bson:"totalScore"`
	Warnings   []string `json:"warnings,omitempty" yaml:"warnings,omitempty" bson:"warnings,omitempty"`
	// Entry is set when the item has no incoming dependency.
	Entry bool `json:"entry" yaml:"entry" bson:"entry"`
	// Exit is set when the item has no outgoing dependency.
	Exit bool `json:"exit" yaml:"exit" bson:"exit"`
}

// HasWarnings reports whether the analysis flagged the item.
func (a Analysis) HasWarnings() bool { return len(a.Warnings) > 0 }

// Item is a single tracker issue.
type Item struct {
	Key            string   `json:"key" yaml:"key" bson:"key"`
	Type           string   `json:"type" yaml:"type" bson:"type"`
	Status         string   `json:"status" yaml:"status" bson:"status"`
	StatusCategory string   `json:"statusCategory" yaml:"statusCategory" bson:"statusCategory"`
	Priority       string   `json:"priority" yaml:"priority" bson:"priority"`
	Summary        string   `json:"summary" yaml:"summary" bson:"summary"`
	EpicKey        string   `json:"epicKey,omitempty" yaml:"epicKey,omitempty" bson:"epicKey,omitempty"`
	Analysis       Analysis `json:"analysis" yaml:"analysis" bson:"analysis"`
}

// Link is a directed relation between two items of the same subgraph.
type Link struct {
	SrcKey string `json:"srcKey" yaml:"srcKey" bson:"srcKey"`
	DstKey string `json:"dstKey" yaml:"dstKey" bson:"dstKey"`
	Type   string `json:"type" yaml:"type" bson:"type"`
}

// IsContainment reports whether the link ties an epic to one of its items.
func (l Link) IsContainment() bool { return l.Type == EpicType }

// ClusterKey returns the key of the cluster the link is drawn in.
// Containment links live with their epic (the source); all other links are
// drawn at the top level.
func (l Link) ClusterKey() string {
	if l.IsContainment() {
		return l.SrcKey
	}
	return RootKey
}

// Subgraph is an independently renderable set of items and links.
type Subgraph struct {
	Label string `json:"label" yaml:"label" bson:"label"`
	Nodes []Item `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Link `json:"edges" yaml:"edges" bson:"edges"`
}

// DanglingLinks returns the links whose source or destination key does not
// match any item of the subgraph, in input order.
func (s Subgraph) DanglingLinks() []Link {
	keys := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		keys[n.Key] = true
	}
	var out []Link
	for _, e := range s.Edges {
		if !keys[e.SrcKey] || !keys[e.DstKey] {
			out = append(out, e)
		}
	}
	return out
}

// WarningCount returns the number of items carrying analysis warnings.
func (s Subgraph) WarningCount() int {
	n := 0
	for _, it := range s.Nodes {
		if it.Analysis.HasWarnings() {
			n++
		}
	}
	return n
}
