// Implements the device-link synchronization client: the
// orchestrator that keeps the local view of contacts' device
// links consistent with the remote directory, coalescing
// concurrent fetches and degrading to cached data on failure.

package directory

import (
	"context"

	"github.com/Hu-Wenqiang/session-android-service/application"
	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/Hu-Wenqiang/session-android-service/transport"
	"github.com/benbjohnson/clock"
)

// Store is the persistence collaborator. It is assumed durable
// and locally authoritative for the caller's own identity.
type Store interface {
	GetDeviceLinks(key protocol.PublicKey) ([]protocol.DeviceLink, error)
	AddDeviceLink(link protocol.DeviceLink) error
	RemoveDeviceLink(link protocol.DeviceLink) error
	ClearDeviceLinks(key protocol.PublicKey) error
	ReplaceDeviceLinks(key protocol.PublicKey, links []protocol.DeviceLink) error
}

// Config carries the directory endpoint and the acting identity.
type Config struct {
	// Server is the directory service base URL.
	Server string

	// SelfKey is the caller's own identity key. The read path
	// never queries the directory for it; local persistence is
	// ground truth for self.
	SelfKey protocol.PublicKey
}

// A Client synchronizes device links with the remote directory.
// The directory is a hint, not a source of truth of last resort:
// on any fetch failure the local cache wins over raising an error.
// Create a single Client per identity and share it; all methods
// are safe for concurrent use.
type Client struct {
	conf    *Config
	fetcher ProfileFetcher
	writer  MappingWriter
	store   Store
	clock   clock.Clock
	logger  *application.Logger

	cache  *syncCache
	flight *coalescer
}

// New builds a sync client. A nil clk falls back to the wall clock.
func New(conf *Config, fetcher ProfileFetcher, writer MappingWriter,
	store Store, clk clock.Clock, logger *application.Logger) *Client {
	if clk == nil {
		clk = clock.New()
	}
	return &Client{
		conf:    conf,
		fetcher: fetcher,
		writer:  writer,
		store:   store,
		clock:   clk,
		logger:  logger,
		cache:   newSyncCache(),
		flight:  newCoalescer(),
	}
}

func (c *Client) now() protocol.Timestamp {
	return protocol.Timestamp(c.clock.Now().UnixMilli())
}

// HasCacheExpired reports whether key would trigger a directory
// fetch right now: it has never synced, or its last sync is older
// than the refresh interval.
func (c *Client) HasCacheExpired(key protocol.PublicKey) bool {
	return c.cache.expired(c.now(), key)
}

// GetDeviceLinks returns the verified device links of a single
// contact. Concurrent calls for the same key are coalesced into
// one directory fetch; later callers observe the first caller's
// result. A structurally invalid key yields the empty set.
func (c *Client) GetDeviceLinks(ctx context.Context, key protocol.PublicKey,
	force bool) ([]protocol.DeviceLink, error) {
	if !key.Valid() {
		return nil, nil
	}
	return c.flight.do(key, func() ([]protocol.DeviceLink, error) {
		return c.GetDeviceLinksAll(ctx, []protocol.PublicKey{key}, force)
	})
}

// GetDeviceLinksAll returns the union of verified device links for
// a set of contacts. Keys with an unexpired sync record are served
// from persistence; the rest are fetched from the directory in one
// request. Every fetch failure degrades to the key's persisted set.
func (c *Client) GetDeviceLinksAll(ctx context.Context, keys []protocol.PublicKey,
	force bool) ([]protocol.DeviceLink, error) {
	requested := protocol.FilterValidKeys(keys)
	if len(requested) == 0 {
		return nil, nil
	}

	// partition; self never hits the directory
	now := c.now()
	var stale []protocol.PublicKey
	for _, k := range requested {
		if k == c.conf.SelfKey {
			continue
		}
		if force || c.cache.expired(now, k) {
			stale = append(stale, k)
		}
	}

	fetched := make(map[protocol.PublicKey][]protocol.DeviceLink)
	if len(stale) > 0 {
		updates := c.fetchDeviceLinks(ctx, stale)
		c.applyUpdates(updates)
		for i := range updates {
			if !updates[i].Failed() {
				fetched[updates[i].Key] = updates[i].Links
			}
		}
	}

	// merge fresh fetches with persisted sets for everything else
	var result []protocol.DeviceLink
	var firstErr error
	seen := make(map[protocol.PublicKey]bool)
	appendLinks := func(links []protocol.DeviceLink) {
		for i := range links {
			pair := links[i].MasterKey + links[i].SlaveKey
			if seen[pair] {
				continue
			}
			seen[pair] = true
			result = append(result, links[i])
		}
	}
	for _, k := range requested {
		if links, ok := fetched[k]; ok {
			appendLinks(links)
			continue
		}
		links, err := c.store.GetDeviceLinks(k)
		if err != nil {
			c.logger.Error("Couldn't read persisted device links",
				"key", k, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		appendLinks(links)
	}
	if len(result) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// fetchDeviceLinks issues one directory fetch scoped to exactly
// the given keys and classifies the outcome per key. A key absent
// from the response is confirmed to have zero links.
func (c *Client) fetchDeviceLinks(ctx context.Context,
	keys []protocol.PublicKey) []UpdateResult {
	records, err := c.fetcher.GetUserProfiles(ctx, keys, c.conf.Server, true)
	if err != nil {
		c.logger.Warn("Couldn't fetch device mappings",
			"keys", len(keys), "error", err)
		results := make([]UpdateResult, 0, len(keys))
		for _, k := range keys {
			results = append(results, UpdateResult{
				Key: k,
				Err: protocol.ErrDirectoryFetchFailed,
			})
		}
		return results
	}

	byKey := make(map[protocol.PublicKey]*application.ProfileRecord, len(records))
	for i := range records {
		byKey[protocol.PublicKey(records[i].Username)] = &records[i]
	}

	results := make([]UpdateResult, 0, len(keys))
	for _, k := range keys {
		record, ok := byKey[k]
		if !ok {
			results = append(results, UpdateResult{Key: k})
			continue
		}
		mapping, err := record.DeviceMapping()
		if err != nil {
			c.logger.Warn("Couldn't parse device mapping", "key", k)
			results = append(results, UpdateResult{
				Key: k,
				Err: protocol.ErrParsingFailed,
			})
			continue
		}
		var links []protocol.DeviceLink
		if mapping != nil {
			for i := range mapping.Authorisations {
				dl := mapping.Authorisations[i].Link()
				if dl.MasterKey != k && dl.SlaveKey != k {
					continue
				}
				if !dl.Verify() {
					c.logger.Debug("Ignoring device link that failed verification",
						"key", k)
					continue
				}
				links = append(links, dl)
			}
		}
		results = append(results, UpdateResult{Key: k, Links: links})
	}
	return results
}

// applyUpdates reconciles fetch outcomes with persistence and the
// sync-timestamp cache. Successes replace the persisted set and
// stamp the timestamp; parsing failures stamp the timestamp only;
// fetch failures leave the timestamp untouched so the next call
// retries promptly.
func (c *Client) applyUpdates(updates []UpdateResult) {
	for i := range updates {
		u := &updates[i]
		switch {
		case !u.Failed():
			if err := c.store.ReplaceDeviceLinks(u.Key, u.Links); err != nil {
				c.logger.Error("Couldn't persist device links",
					"key", u.Key, "error", err)
				continue
			}
			c.cache.stamp(u.Key, c.now())
		case u.Err == protocol.ErrParsingFailed:
			c.cache.stamp(u.Key, c.now())
		}
	}
}

// SetDeviceLinks submits the acting identity's full authorization
// list as a partial profile update, within the bounded retry
// budget. Local persistence is not touched here; callers mutate it
// only after the remote submission succeeds.
func (c *Client) SetDeviceLinks(ctx context.Context,
	links []protocol.DeviceLink) error {
	var value *application.DeviceMappingValue
	if len(links) > 0 {
		isPrimary := true
		for i := range links {
			if links[i].SlaveKey == c.conf.SelfKey {
				isPrimary = false
				break
			}
		}
		value = application.NewDeviceMappingValue(isPrimary, links)
	}
	err := transport.RetryIfNeeded(ctx, protocol.MaxRetryCount, func() error {
		return c.writer.SubmitDeviceMapping(ctx, c.conf.Server, value)
	})
	if err != nil {
		c.logger.Error("Couldn't update device mappings", "error", err)
		return protocol.ErrDirectoryWriteFailed
	}
	return nil
}

// AddDeviceLink authorizes a new link for the acting identity. It
// refreshes the own link set from the directory first so an edit
// from another session isn't clobbered, submits the new full set,
// and applies the mutation locally only once the remote update
// succeeded.
func (c *Client) AddDeviceLink(ctx context.Context,
	link protocol.DeviceLink) error {
	current, err := c.refreshOwnLinks(ctx)
	if err != nil {
		return err
	}
	links := make([]protocol.DeviceLink, 0, len(current)+1)
	for i := range current {
		if !current[i].Equal(&link) {
			links = append(links, current[i])
		}
	}
	links = append(links, link)

	if err := c.SetDeviceLinks(ctx, links); err != nil {
		return err
	}
	return c.store.AddDeviceLink(link)
}

// RemoveDeviceLink revokes a link, with the same
// remote-before-local ordering as AddDeviceLink.
func (c *Client) RemoveDeviceLink(ctx context.Context,
	link protocol.DeviceLink) error {
	current, err := c.refreshOwnLinks(ctx)
	if err != nil {
		return err
	}
	links := make([]protocol.DeviceLink, 0, len(current))
	for i := range current {
		if !current[i].Equal(&link) {
			links = append(links, current[i])
		}
	}

	if err := c.SetDeviceLinks(ctx, links); err != nil {
		return err
	}
	return c.store.RemoveDeviceLink(link)
}

// refreshOwnLinks force-fetches the acting identity's link set.
// This is the one spot where the self key does hit the directory:
// a stale local view here would clobber a concurrent edit.
func (c *Client) refreshOwnLinks(ctx context.Context) ([]protocol.DeviceLink, error) {
	updates := c.fetchDeviceLinks(ctx, []protocol.PublicKey{c.conf.SelfKey})
	c.applyUpdates(updates)
	return c.store.GetDeviceLinks(c.conf.SelfKey)
}

// GetPrimaryDevicePublicKey resolves the primary identity a
// secondary key is linked to, syncing the key's links if needed.
// It returns the empty key when no linkage is known.
func (c *Client) GetPrimaryDevicePublicKey(ctx context.Context,
	key protocol.PublicKey) (protocol.PublicKey, error) {
	links, err := c.GetDeviceLinks(ctx, key, false)
	if err != nil {
		return "", err
	}
	for i := range links {
		if links[i].SlaveKey == key {
			return links[i].MasterKey, nil
		}
	}
	return "", nil
}
