/*
Package directory implements the client side of the device-link
directory protocol.

A Client answers "which devices are linked to this contact?" by
combining three layers: a per-key sync-timestamp cache enforcing a
minimum refresh interval, a per-key request coalescer guaranteeing
at most one outstanding directory fetch per key, and the local
persistence collaborator holding the last verified link set.

The remote directory is untrusted: every returned link is checked
against both of its signatures before it is persisted or returned,
and any fetch failure degrades to the locally persisted data
rather than surfacing an error.

The coalescer guarantees at most one outstanding fetch per key; it
does not order fetches for the same key across time. A forced
refresh started after a non-forced one completes may return staler
data if the forced caller's request raced ahead.
*/
package directory
