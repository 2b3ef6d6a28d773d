package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/caitlinwade/lumen/backend/internal/storage"
)

// deleteBlobs removes the given keys from the blob store. The owning rows
// are already gone by the time this runs, so each delete is attempted
// independently and failures are logged rather than surfaced: the caller
// must not report failure once the relational delete has committed. All
// attempts complete before this returns.
func deleteBlobs(ctx context.Context, store storage.BlobStore, keys []string) {
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := store.Delete(ctx, key); err != nil {
				log.Printf("Failed to delete blob %s: %v", key, err)
			}
		}(key)
	}
	wg.Wait()
}
