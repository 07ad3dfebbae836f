// package reconciler computes the add/remove delta between a source-of-truth
// track collection and the current state of a playlist.
package reconciler

import (
	"sort"

	"github.com/desertthunder/likesync/internal/models"
)

// DefaultChunkSize is the catalog's limit on ids per playlist write.
const DefaultChunkSize = 100

// Reconcile returns the ids in sourceOfTruth missing from currentState (ToAdd)
// and the ids in currentState missing from sourceOfTruth (ToRemove).
//
// Ids are compared by exact string equality. Both slices are sorted and never nil.
func Reconcile(sourceOfTruth, currentState models.Collection) models.ReconciliationDelta {
	return models.ReconciliationDelta{
		ToAdd:    difference(sourceOfTruth, currentState),
		ToRemove: difference(currentState, sourceOfTruth),
	}
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b models.Collection) []string {
	ids := make([]string, 0)
	for id := range a {
		if _, ok := b[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Chunk splits ids into consecutive batches of at most size ids.
// A non-positive size yields a single batch. Empty input yields no batches.
func Chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]string{ids}
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
