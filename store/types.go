package store

import "github.com/vaultswap/vaultswap"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = vaultswap.ReadOnlyKVStore
type SetDeleter = vaultswap.SetDeleter
type KVStore = vaultswap.KVStore
type Batch = vaultswap.Batch
type Iterator = vaultswap.Iterator
type CacheableKVStore = vaultswap.CacheableKVStore
type KVCacheWrap = vaultswap.KVCacheWrap
type CommitKVStore = vaultswap.CommitKVStore
type CommitID = vaultswap.CommitID

// Model groups together key and value to return.
type Model struct {
	Key   []byte
	Value []byte
}
