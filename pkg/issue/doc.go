// Package issue defines the tracker data that jirascope turns into diagrams.
//
// A tracker snapshot is a list of [Subgraph] values. Each subgraph is an
// independent rendering unit holding [Item] values (issues, already enriched
// with an [Analysis]) and [Link] values between them. Links never cross
// subgraph boundaries.
//
// # Classification
//
// Every item falls into exactly one [Kind]:
//
//   - [KindEpic]: the item is itself an epic and anchors its own cluster
//   - [KindChildOfEpic]: the item names an owning epic via EpicKey
//   - [KindRoot]: everything else, drawn outside any cluster
//
// [Item.ClusterKey] and [Link.ClusterKey] derive the grouping key from that
// classification; [RootKey] is the synthetic key for unaffiliated elements.
//
// # Sources
//
// Snapshots are produced by the tracker population step and read back through
// a [Source]: [FileSource] for JSON or YAML files on disk, [MongoSource] for a
// MongoDB collection.
package issue
