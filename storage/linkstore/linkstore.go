// Package linkstore persists verified device-link sets in a kv.DB.
// It is the locally authoritative source for the caller's own
// linkage and the fallback source for every contact whose
// directory fetch fails.
//
// A primary device's full authorization list is stored under its
// own key; a secondary device additionally gets an index entry
// pointing at its primary, so lookups by either key resolve.
package linkstore

import (
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/Hu-Wenqiang/session-android-service/crypto"
	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/Hu-Wenqiang/session-android-service/storage/kv"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	linksPrefix   = "links:"
	primaryPrefix = "primary:"

	readCacheSize = 128
)

// A Store keeps device-link sets in a kv.DB with an LRU
// read-through cache in front. All methods are safe for
// concurrent use; a key's set is replaced atomically so readers
// never observe a partially written set.
type Store struct {
	db    kv.DB
	cache *lru.Cache[protocol.PublicKey, []protocol.DeviceLink]

	// serializes read-modify-write mutations
	mu sync.Mutex
}

// New builds a Store over the given database.
func New(db kv.DB) (*Store, error) {
	cache, err := lru.New[protocol.PublicKey, []protocol.DeviceLink](readCacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

func linksKey(key protocol.PublicKey) []byte {
	return []byte(linksPrefix + hex.EncodeToString(crypto.Digest([]byte(key))))
}

func primaryKey(key protocol.PublicKey) []byte {
	return []byte(primaryPrefix + hex.EncodeToString(crypto.Digest([]byte(key))))
}

// readSet loads the authorization list stored under a primary key.
// A missing entry is an empty set.
func (s *Store) readSet(key protocol.PublicKey) ([]protocol.DeviceLink, error) {
	buf, err := s.db.Get(linksKey(key))
	if err == s.db.ErrNotFound() {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var links []protocol.DeviceLink
	if err := json.Unmarshal(buf, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// primaryOf resolves the primary key a secondary key is linked to.
// Empty result means the key is not known as a secondary device.
func (s *Store) primaryOf(key protocol.PublicKey) (protocol.PublicKey, error) {
	buf, err := s.db.Get(primaryKey(key))
	if err == s.db.ErrNotFound() {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return protocol.PublicKey(buf), nil
}

// GetDeviceLinks returns the last-known device links involving
// the given key: the full authorization list when the key is a
// primary device, or the key's own link when it is a secondary.
func (s *Store) GetDeviceLinks(key protocol.PublicKey) ([]protocol.DeviceLink, error) {
	if links, ok := s.cache.Get(key); ok {
		return links, nil
	}

	links, err := s.readSet(key)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		primary, err := s.primaryOf(key)
		if err != nil {
			return nil, err
		}
		if primary != "" {
			set, err := s.readSet(primary)
			if err != nil {
				return nil, err
			}
			for i := range set {
				if set[i].SlaveKey == key {
					links = append(links, set[i])
				}
			}
		}
	}
	s.cache.Add(key, links)
	return links, nil
}

// GetPrimaryDevicePublicKey returns the primary identity a key
// belongs to: the key itself when it owns an authorization list,
// its linked primary when it is a secondary device, or empty when
// the key is unknown.
func (s *Store) GetPrimaryDevicePublicKey(key protocol.PublicKey) (protocol.PublicKey, error) {
	links, err := s.readSet(key)
	if err != nil {
		return "", err
	}
	if len(links) > 0 {
		return key, nil
	}
	return s.primaryOf(key)
}

// writeSet persists a primary key's full set plus the secondary
// index entries in one batch write.
func (s *Store) writeSet(key protocol.PublicKey, old, links []protocol.DeviceLink) error {
	batch := s.db.NewBatch()
	for i := range old {
		batch.Delete(primaryKey(old[i].SlaveKey))
	}
	if len(links) == 0 {
		batch.Delete(linksKey(key))
	} else {
		buf, err := json.Marshal(links)
		if err != nil {
			return err
		}
		batch.Put(linksKey(key), buf)
		for i := range links {
			batch.Put(primaryKey(links[i].SlaveKey), []byte(links[i].MasterKey))
		}
	}
	if err := s.db.Write(batch); err != nil {
		return err
	}

	s.cache.Remove(key)
	for i := range old {
		s.cache.Remove(old[i].SlaveKey)
	}
	for i := range links {
		s.cache.Remove(links[i].SlaveKey)
	}
	return nil
}

// AddDeviceLink inserts a link into its primary device's set,
// replacing any existing link for the same secondary device.
func (s *Store) AddDeviceLink(link protocol.DeviceLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.readSet(link.MasterKey)
	if err != nil {
		return err
	}
	links := make([]protocol.DeviceLink, 0, len(old)+1)
	for i := range old {
		if !old[i].Equal(&link) {
			links = append(links, old[i])
		}
	}
	links = append(links, link)
	return s.writeSet(link.MasterKey, old, links)
}

// RemoveDeviceLink removes a link from its primary device's set.
// Removing an absent link is a no-op.
func (s *Store) RemoveDeviceLink(link protocol.DeviceLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.readSet(link.MasterKey)
	if err != nil {
		return err
	}
	links := make([]protocol.DeviceLink, 0, len(old))
	for i := range old {
		if !old[i].Equal(&link) {
			links = append(links, old[i])
		}
	}
	if len(links) == len(old) {
		return nil
	}
	return s.writeSet(link.MasterKey, old, links)
}

// ClearDeviceLinks drops the full set stored under a primary key.
func (s *Store) ClearDeviceLinks(key protocol.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.readSet(key)
	if err != nil {
		return err
	}
	return s.writeSet(key, old, nil)
}

// ReplaceDeviceLinks atomically swaps a primary key's set for the
// given one. Concurrent readers observe either the old or the new
// set, never a mix.
func (s *Store) ReplaceDeviceLinks(key protocol.PublicKey, links []protocol.DeviceLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, err := s.readSet(key)
	if err != nil {
		return err
	}
	return s.writeSet(key, old, links)
}
