package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopbot/internal/config"
)

const collectionDocuments = "documents"

// MongoBackend stores each document as one record in the documents
// collection: {_id: name, body: <json>}. The body is kept as marshaled
// JSON so the document shape stays byte-identical with the file backend.
// A connection is opened per call, mirroring the short-lived-connection
// pattern of the rest of the deployment.
type MongoBackend struct {
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoBackend(conf *config.Config) *MongoBackend {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	return &MongoBackend{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
}

func (m *MongoBackend) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoBackend) disconnect(ctx context.Context, connection *mongo.Client) {
	_ = connection.Disconnect(ctx)
}

type documentRecord struct {
	Name string `bson:"_id"`
	Body string `bson:"body"`
}

func (m *MongoBackend) Load(ctx context.Context, name string, v any) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionDocuments)
	var record documentRecord
	err = collection.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongodb find %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(record.Body), v); err != nil {
		return fmt.Errorf("unmarshal document %s: %w", name, err)
	}
	return nil
}

func (m *MongoBackend) Save(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", name, err)
	}

	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(collectionDocuments)
	_, err = collection.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: name}},
		documentRecord{Name: name, Body: string(body)},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongodb save %s: %w", name, err)
	}
	return nil
}
