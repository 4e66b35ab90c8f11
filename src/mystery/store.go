package mystery

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// schemaVersion tags the persisted blob so the layout can evolve safely.
const schemaVersion = 1

const stateKey = "Communities"

type stateFile struct {
	Version     int                  `json:"version" bson:"version"`
	Communities map[string]*Progress `json:"communities" bson:"communities"`
}

// ProgressStore hides the file-vs-database choice behind a whole-blob
// load/save pair.
type ProgressStore interface {
	Load() (map[string]*Progress, error)
	Save(map[string]*Progress) error
}

// DiskStore keeps the blob as a JSON file under a diskv root.
type DiskStore struct {
	store *diskv.Diskv
}

// NewDiskStore opens (or creates) a diskv store rooted at basePath.
func NewDiskStore(basePath string) *DiskStore {
	return &DiskStore{
		store: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: advancedTransform,
			InverseTransform:  inverseTransform,
			CacheSizeMax:      512 * 512,
		}),
	}
}

// Load reads the blob. A missing file is not an error; it means no guild
// has spoken to the motel yet.
func (d *DiskStore) Load() (map[string]*Progress, error) {
	b, err := d.store.Read(stateKey)
	if err != nil {
		return nil, nil
	}

	var f stateFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.Communities == nil {
		// Pre-versioned files were the bare community map.
		var legacy map[string]*Progress
		if err := json.Unmarshal(b, &legacy); err == nil {
			return legacy, nil
		}
	}
	return f.Communities, nil
}

// Save writes the blob wholesale.
func (d *DiskStore) Save(c map[string]*Progress) error {
	b, err := json.Marshal(stateFile{Version: schemaVersion, Communities: c})
	if err != nil {
		return err
	}
	return d.store.Write(stateKey, b)
}

// advancedTransform for storing KV pairs
func advancedTransform(key string) *diskv.PathKey {
	path := strings.Split(key, "/")
	last := len(path) - 1
	return &diskv.PathKey{
		Path:     path[:last],
		FileName: path[last] + ".json",
	}
}

// inverseTransform for storing KV pairs
func inverseTransform(pathKey *diskv.PathKey) (key string) {
	txt := pathKey.FileName[len(pathKey.FileName)-5:]
	if txt != ".json" {
		panic("Invalid file found in storage folder!")
	}
	return strings.Join(pathKey.Path, "/") + pathKey.FileName[:len(pathKey.FileName)-5]
}

// MongoStore keeps the blob as a single document. Same shape as the file,
// different durability story.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects and selects the progress collection.
func NewMongoStore(uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return &MongoStore{
		client: client,
		coll:   client.Database("chadbot").Collection("progress"),
	}, nil
}

// Load reads the single state document.
func (m *MongoStore) Load() (map[string]*Progress, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var f stateFile
	err := m.coll.FindOne(ctx, bson.M{"_id": "state"}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f.Communities, nil
}

// Save upserts the single state document.
func (m *MongoStore) Save(c map[string]*Progress) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	doc := bson.M{"_id": "state", "version": schemaVersion, "communities": c}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": "state"}, doc, options.Replace().SetUpsert(true))
	return err
}

// Close is used to nicely shutdown the DB connection
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
