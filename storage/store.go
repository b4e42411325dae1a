// Package storage keeps generated event descriptions in NATS KV, one bucket
// per output mode.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semevents/triples"
)

// BucketPrefix prefixes every bucket name.
const BucketPrefix = "SEMEVENTS_"

// keyNamespace scopes the name-based UUIDs used as KV keys.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("http://rdf.geohistoricaldata.org/id/"))

// BucketName returns the KV bucket holding descriptions of a mode.
func BucketName(mode string) string {
	return BucketPrefix + strings.ToUpper(mode)
}

// Key identifies a stored description.
type Key struct {
	Mode string
	ID   string
}

// String returns the string representation of the key.
func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Mode, k.ID)
}

// ParseKey parses a key string into its components.
func ParseKey(s string) (Key, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Key{}, fmt.Errorf("invalid key format: %s", s)
	}
	return Key{Mode: parts[0], ID: parts[1]}, nil
}

// KeyFor derives a stable key from the source table and event id, so
// re-converting a table overwrites its previous descriptions.
func KeyFor(mode, source, eventID string) Key {
	return Key{
		Mode: mode,
		ID:   uuid.NewSHA1(keyNamespace, []byte(source+"\x00"+eventID)).String(),
	}
}

// StoredDescription is the KV value of one description.
type StoredDescription struct {
	Key         string              `json:"key"`
	Source      string              `json:"source"`
	EventID     string              `json:"event_id"`
	Description triples.Description `json:"description"`
	StoredAt    time.Time           `json:"stored_at"`
}

// Store provides description storage backed by NATS KV.
type Store struct {
	buckets map[string]jetstream.KeyValue
}

// NewStore creates a Store with the given JetStream context.
// It creates a KV bucket for each mode if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream, modes []string) (*Store, error) {
	buckets := make(map[string]jetstream.KeyValue, len(modes))
	for _, mode := range modes {
		kv, err := getOrCreateBucket(ctx, js, BucketName(mode))
		if err != nil {
			return nil, fmt.Errorf("create %s bucket: %w", mode, err)
		}
		buckets[mode] = kv
	}
	return &Store{buckets: buckets}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("semevents %s descriptions", strings.ToLower(strings.TrimPrefix(name, BucketPrefix))),
		History:     5, // Keep last 5 revisions
	})
}

func (s *Store) bucket(mode string) (jetstream.KeyValue, error) {
	kv, ok := s.buckets[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	return kv, nil
}

// Put stores a description and returns its key.
func (s *Store) Put(ctx context.Context, mode, source string, desc triples.Description) (Key, error) {
	kv, err := s.bucket(mode)
	if err != nil {
		return Key{}, err
	}

	key := KeyFor(mode, source, desc.EventID())
	data, err := json.Marshal(StoredDescription{
		Key:         key.String(),
		Source:      source,
		EventID:     desc.EventID(),
		Description: desc,
		StoredAt:    time.Now().UTC(),
	})
	if err != nil {
		return Key{}, fmt.Errorf("marshal description: %w", err)
	}

	if _, err := kv.Put(ctx, key.ID, data); err != nil {
		return Key{}, fmt.Errorf("store description: %w", err)
	}

	return key, nil
}

// Get retrieves a description by key.
func (s *Store) Get(ctx context.Context, key Key) (*StoredDescription, error) {
	kv, err := s.bucket(key.Mode)
	if err != nil {
		return nil, err
	}

	entry, err := kv.Get(ctx, key.ID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get description: %w", err)
	}

	var d StoredDescription
	if err := json.Unmarshal(entry.Value(), &d); err != nil {
		return nil, fmt.Errorf("unmarshal description: %w", err)
	}

	return &d, nil
}

// List returns all descriptions of a mode ordered by source then event id.
func (s *Store) List(ctx context.Context, mode string) ([]*StoredDescription, error) {
	kv, err := s.bucket(mode)
	if err != nil {
		return nil, err
	}

	keys, err := kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s keys: %w", mode, err)
	}

	descs := make([]*StoredDescription, 0, len(keys))
	for _, key := range keys {
		entry, err := kv.Get(ctx, key)
		if err != nil {
			continue // Skip entries that fail to load
		}
		var d StoredDescription
		if err := json.Unmarshal(entry.Value(), &d); err != nil {
			continue
		}
		descs = append(descs, &d)
	}

	sort.Slice(descs, func(i, j int) bool {
		if descs[i].Source != descs[j].Source {
			return descs[i].Source < descs[j].Source
		}
		return descs[i].EventID < descs[j].EventID
	})
	return descs, nil
}
