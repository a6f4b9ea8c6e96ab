package access

import "cleoaura/careteam-app/internal/domain"

// Operation distinguishes reads from writes at the enforcement boundary.
type Operation string

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

// Collection names one trainee-owned sub-collection.
type Collection string

const (
	CollectionWorkouts             Collection = "workouts"
	CollectionRecovery             Collection = "recovery"
	CollectionNutritionDays        Collection = "nutritionDays"
	CollectionWellbeingDays        Collection = "wellbeingDays"
	CollectionProgressMeasurements Collection = "progressMeasurements"
	CollectionWearablesSummary     Collection = "wearablesSummary"
)

// collectionModules is the single declarative table mapping each trainee
// sub-collection to the module that gates it. Both the service-level gate
// and the route middleware evaluate this same table, so the two layers
// cannot drift.
var collectionModules = map[Collection]domain.ModuleKey{
	CollectionWorkouts:             domain.ModuleWorkouts,
	CollectionRecovery:             domain.ModuleRecovery,
	CollectionNutritionDays:        domain.ModuleNutrition,
	CollectionWellbeingDays:        domain.ModuleWellbeing,
	CollectionProgressMeasurements: domain.ModuleProgress,
	CollectionWearablesSummary:     domain.ModuleWearables,
}

// ModuleForCollection resolves the module gating a sub-collection. The second
// return is false for unknown collection names, which the authorizer denies.
func ModuleForCollection(collection Collection) (domain.ModuleKey, bool) {
	module, ok := collectionModules[collection]
	return module, ok
}

// GuardedCollections lists every sub-collection the enforcement layer knows,
// in a stable order.
func GuardedCollections() []Collection {
	return []Collection{
		CollectionWorkouts,
		CollectionRecovery,
		CollectionNutritionDays,
		CollectionWellbeingDays,
		CollectionProgressMeasurements,
		CollectionWearablesSummary,
	}
}
