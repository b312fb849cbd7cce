package routes

import (
	"slices"

	"github.com/toyz/actioncheck/internal/models"
)

// Merge layers collected controller actions over discovered ones. A
// controller present in collected keeps its collected list; discovered
// entries only fill the gaps.
func Merge(collected, discovered models.ControllerActions) models.ControllerActions {
	merged := discovered.Clone()
	for class, actions := range collected {
		merged[class] = slices.Clone(actions)
	}
	return merged
}

// MergeCollected unions several collected batches. Action lists of the same
// controller are concatenated in batch order without duplicates.
func MergeCollected(batches ...models.ControllerActions) models.ControllerActions {
	merged := models.ControllerActions{}
	for _, batch := range batches {
		for _, class := range batch.Controllers() {
			for _, action := range batch[class] {
				if !slices.Contains(merged[class], action) {
					merged[class] = append(merged[class], action)
				}
			}
			if _, ok := merged[class]; !ok {
				merged[class] = []string{}
			}
		}
	}
	return merged
}
