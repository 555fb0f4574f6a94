package connect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/joshua-takyi/spk/internal/config"
)

// Clients holds the optional backend connections. A nil field means that
// backend is not configured.
type Clients struct {
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Redis      *redis.Client
	Cloudinary *cloudinary.Cloudinary
}

// supabase init
func InitSupabase(url, key string) (*supabase.Client, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return client, nil
}

// mongo init
func MongoDBConnect(ctx context.Context, uri, password string) (*mongo.Client, error) {
	fullUri := strings.Replace(uri, "<password>", password, 1)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fullUri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}
	return client, nil
}

// RedisConnect parses a redis:// URL and checks the server answers.
func RedisConnect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}

func CloudinaryCredentials(cloudName, apiKey, apiSecret string) (*cloudinary.Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %v", err)
	}
	return cld, nil
}

// Open connects every backend the config enables. On error the clients
// opened so far are closed.
func Open(ctx context.Context, cfg *config.Config) (*Clients, error) {
	c := &Clients{}
	var err error

	if cfg.SupabaseEnabled() {
		if c.Supabase, err = InitSupabase(cfg.SupabaseURL, cfg.SupabaseAnonKey); err != nil {
			return nil, err
		}
	}
	if cfg.MongoDBEnabled() {
		if c.MongoDB, err = MongoDBConnect(ctx, cfg.MongoDBURI, cfg.MongoDBPassword); err != nil {
			c.Close()
			return nil, err
		}
	}
	if cfg.RedisEnabled() {
		if c.Redis, err = RedisConnect(ctx, cfg.RedisURL); err != nil {
			c.Close()
			return nil, err
		}
	}
	if cfg.CloudinaryEnabled() {
		if c.Cloudinary, err = CloudinaryCredentials(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// Close disconnects every open client and returns the first error.
func (c *Clients) Close() error {
	var first error
	if c.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.MongoDB.Disconnect(ctx); err != nil {
			first = fmt.Errorf("failed to disconnect MongoDB: %v", err)
		}
		c.MongoDB = nil
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil && first == nil {
			first = fmt.Errorf("failed to close Redis: %w", err)
		}
		c.Redis = nil
	}
	c.Supabase = nil
	return first
}
