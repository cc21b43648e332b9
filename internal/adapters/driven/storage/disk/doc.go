// Package disk provides JSON file implementations of driven ports.
//
// Adapters:
//   - CacheDisk: the persistent tier of the query cache, one file per key
//   - IndexSnapshots: keyword index snapshots keyed by corpus hash
//
// Files are written to a temporary name and renamed into place so readers
// never see a partial write.
package disk
