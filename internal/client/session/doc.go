// Package session holds the single writable {token, user} slot of the client.
//
// A Store is constructed explicitly and injected into its consumers; there is
// no package-level session. Its lifecycle is Init (load the durable token),
// Read, Replace (whole-object swap, persisted), Teardown.
//
// Only the bearer token survives a restart. It is written through a
// TokenStorage: the client SQLite database (MetadataStorage) or the OS
// keychain (KeyringStorage).
package session
