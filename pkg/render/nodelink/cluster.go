package nodelink

import "github.com/matzehuels/jirascope/pkg/issue"

// Cluster is the set of items and links drawn together for one grouping key.
type Cluster struct {
	Key   string
	Nodes []issue.Item
	Edges []issue.Link
}

// Len returns the number of elements in the cluster.
func (c Cluster) Len() int { return len(c.Nodes) + len(c.Edges) }

// Grouping partitions a subgraph by epic.
type Grouping struct {
	// Clusters holds one entry per epic key, in order of first appearance
	// (items first, then links).
	Clusters []Cluster
	// Root holds the items and links that belong to no epic.
	Root Cluster
}

// Group partitions the items and links of sg by cluster key. Item and link
// partitions are merged by key, so an epic whose containment links are all
// that reference it still gets a cluster. Every element of sg appears in
// exactly one cluster.
func Group(sg issue.Subgraph) Grouping {
	g := Grouping{Root: Cluster{Key: issue.RootKey}}
	index := make(map[string]int)

	cluster := func(key string) *Cluster {
		if key == issue.RootKey {
			return &g.Root
		}
		i, ok := index[key]
		if !ok {
			i = len(g.Clusters)
			index[key] = i
			g.Clusters = append(g.Clusters, Cluster{Key: key})
		}
		return &g.Clusters[i]
	}

	for _, it := range sg.Nodes {
		c := cluster(it.ClusterKey())
		c.Nodes = append(c.Nodes, it)
	}
	for _, l := range sg.Edges {
		c := cluster(l.ClusterKey())
		c.Edges = append(c.Edges, l)
	}
	return g
}

// Lookup returns the cluster for key, including the root cluster.
func (g Grouping) Lookup(key string) (Cluster, bool) {
	if key == issue.RootKey {
		return g.Root, true
	}
	for _, c := range g.Clusters {
		if c.Key == key {
			return c, true
		}
	}
	return Cluster{}, false
}

// Size returns the number of elements across all clusters.
func (g Grouping) Size() int {
	n := g.Root.Len()
	for _, c := range g.Clusters {
		n += c.Len()
	}
	return n
}
