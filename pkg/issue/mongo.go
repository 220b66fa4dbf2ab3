package issue

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/jirascope/pkg/errors"
)

// Defaults for the MongoDB snapshot store.
const (
	DefaultMongoDatabase   = "jirascope"
	DefaultMongoCollection = "subgraphs"
)

// MongoSource reads subgraph documents from a MongoDB collection, one
// document per subgraph, as persisted by the tracker population step.
type MongoSource struct {
	URI        string
	Database   string
	Collection string
}

// Subgraphs implements [Source]. Documents are returned sorted by label.
func (s MongoSource) Subgraphs(ctx context.Context) ([]Subgraph, error) {
	if s.URI == "" {
		return nil, errors.New(errors.ErrCodeSource, "mongo URI is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "connect to mongo")
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	coll := client.Database(s.database()).Collection(s.collection())
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "label", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "query %s.%s", s.database(), s.collection())
	}

	var out []Subgraph
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSource, err, "decode subgraphs")
	}
	return out, nil
}

func (s MongoSource) database() string {
	if s.Database == "" {
		return DefaultMongoDatabase
	}
	return s.Database
}

func (s MongoSource) collection() string {
	if s.Collection == "" {
		return DefaultMongoCollection
	}
	return s.Collection
}

var _ Source = MongoSource{}
