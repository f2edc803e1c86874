/*
Package protocol defines the core types of the client-side trust
and admission layer: identity public keys, device links and their
signature verification, the message envelope stamped by the proof
of work engine, and the error taxonomy shared by the sync and
admission paths.

Device Link

A device link authorizes a secondary device to act for a primary
identity. It carries a request signature from the secondary device
and a grant signature from the primary device, both over the
canonical key pair. Only links passing Verify are ever persisted
or returned to callers.

Directory

The directory subpackage implements the synchronization client
that keeps the local view of a contact's device links fresh: it
partitions requested keys into fresh and stale, coalesces
concurrent fetches per key, verifies every returned link, and
falls back to the local cache on any fetch failure.

Proof Of Work

The pow subpackage computes the hashcash-style stamp the relay
tier demands before accepting a message, with difficulty scaling
in payload size and TTL.
*/
package protocol
