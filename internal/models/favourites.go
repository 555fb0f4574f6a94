package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PreferencesDbName  = "spk"
	PreferencesColName = "preferences"

	ItemTypeEvent        = "event"
	ItemTypeOrganization = "organization"
)

type FavouriteItem struct {
	ItemID   string    `bson:"item_id" json:"item_id"`
	ItemType string    `bson:"item_type" json:"item_type"` // "event" or "organization"
	AddedAt  time.Time `bson:"added_at" json:"added_at"`
}

// Preferences holds the per-user persona choice and favourited items.
type Preferences struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID    uuid.UUID                `bson:"user_id" json:"user_id" validate:"required"`
	Persona   Persona                  `bson:"persona,omitempty" json:"persona,omitempty"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type PreferenceRepo interface {
	AddToFavourites(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*Preferences, error)
	RemoveFromFavourites(ctx context.Context, userId uuid.UUID, itemId string) error
	SetPersona(ctx context.Context, userId uuid.UUID, persona Persona) (*Preferences, error)
	GetPreferences(ctx context.Context, userId uuid.UUID) (*Preferences, error)
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(dbName).Collection(colName), nil
}

// EnsureIndexes creates the unique user index on the preferences collection.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, PreferencesDbName, PreferencesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("user_id_unique"),
	})
	if err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) upsert(ctx context.Context, userId uuid.UUID, set bson.M) (*Preferences, error) {
	col, err := mdb.GetCollection(ctx, PreferencesDbName, PreferencesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now()
	set["updated_at"] = now

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"user_id":    userId,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Preferences
	if err := col.FindOneAndUpdate(ctx, bson.M{"user_id": userId}, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting preferences: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) AddToFavourites(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*Preferences, error) {
	return mdb.upsert(ctx, userId, bson.M{
		fmt.Sprintf("items.%s", itemId): FavouriteItem{
			ItemID:   itemId,
			ItemType: itemType,
			AddedAt:  time.Now(),
		},
	})
}

func (mdb *MongodbRepo) SetPersona(ctx context.Context, userId uuid.UUID, persona Persona) (*Preferences, error) {
	return mdb.upsert(ctx, userId, bson.M{"persona": persona})
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userId uuid.UUID, itemId string) error {
	col, err := mdb.GetCollection(ctx, PreferencesDbName, PreferencesColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{"user_id": userId}
	update := bson.M{
		"$unset": bson.M{
			fmt.Sprintf("items.%s", itemId): "",
		},
		"$set": bson.M{
			"updated_at": time.Now(),
		},
	}

	_, err = col.UpdateOne(ctx, filter, update)
	return err
}

func (mdb *MongodbRepo) GetPreferences(ctx context.Context, userId uuid.UUID) (*Preferences, error) {
	col, err := mdb.GetCollection(ctx, PreferencesDbName, PreferencesColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var prefs Preferences
	err = col.FindOne(ctx, bson.M{"user_id": userId}).Decode(&prefs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Preferences{UserID: userId, Items: map[string]FavouriteItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding preferences: %w", err)
	}
	if prefs.Items == nil {
		prefs.Items = map[string]FavouriteItem{}
	}
	return &prefs, nil
}

// MemoryPreferenceRepo is the in-process PreferenceRepo used when MongoDB is
// not configured.
type MemoryPreferenceRepo struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]*Preferences
}

func NewMemoryPreferenceRepo() *MemoryPreferenceRepo {
	return &MemoryPreferenceRepo{prefs: make(map[uuid.UUID]*Preferences)}
}

func (m *MemoryPreferenceRepo) entry(userId uuid.UUID) *Preferences {
	p, ok := m.prefs[userId]
	if !ok {
		now := time.Now()
		p = &Preferences{UserID: userId, Items: map[string]FavouriteItem{}, CreatedAt: now, UpdatedAt: now}
		m.prefs[userId] = p
	}
	return p
}

func (m *MemoryPreferenceRepo) snapshot(p *Preferences) *Preferences {
	out := *p
	out.Items = make(map[string]FavouriteItem, len(p.Items))
	for k, v := range p.Items {
		out.Items[k] = v
	}
	return &out
}

func (m *MemoryPreferenceRepo) AddToFavourites(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.entry(userId)
	p.Items[itemId] = FavouriteItem{ItemID: itemId, ItemType: itemType, AddedAt: time.Now()}
	p.UpdatedAt = time.Now()
	return m.snapshot(p), nil
}

func (m *MemoryPreferenceRepo) RemoveFromFavourites(ctx context.Context, userId uuid.UUID, itemId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.entry(userId)
	delete(p.Items, itemId)
	p.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryPreferenceRepo) SetPersona(ctx context.Context, userId uuid.UUID, persona Persona) (*Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.entry(userId)
	p.Persona = persona
	p.UpdatedAt = time.Now()
	return m.snapshot(p), nil
}

func (m *MemoryPreferenceRepo) GetPreferences(ctx context.Context, userId uuid.UUID) (*Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(m.entry(userId)), nil
}
