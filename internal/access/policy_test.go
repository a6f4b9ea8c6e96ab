package access

import (
	"testing"

	"cleoaura/careteam-app/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestModuleForCollection(t *testing.T) {
	cases := map[Collection]domain.ModuleKey{
		CollectionWorkouts:             domain.ModuleWorkouts,
		CollectionRecovery:             domain.ModuleRecovery,
		CollectionNutritionDays:        domain.ModuleNutrition,
		CollectionWellbeingDays:        domain.ModuleWellbeing,
		CollectionProgressMeasurements: domain.ModuleProgress,
		CollectionWearablesSummary:     domain.ModuleWearables,
	}

	for collection, want := range cases {
		module, ok := ModuleForCollection(collection)
		assert.True(t, ok, "collection %s", collection)
		assert.Equal(t, want, module)
	}
}

func TestModuleForCollectionUnknown(t *testing.T) {
	_, ok := ModuleForCollection(Collection("diary"))
	assert.False(t, ok)
	_, ok = ModuleForCollection(Collection(""))
	assert.False(t, ok)
}

func TestGuardedCollectionsCoverEveryModule(t *testing.T) {
	guarded := GuardedCollections()
	assert.Len(t, guarded, len(domain.AllModuleKeys))

	seen := make(map[domain.ModuleKey]bool)
	for _, collection := range guarded {
		module, ok := ModuleForCollection(collection)
		assert.True(t, ok)
		seen[module] = true
	}
	for _, key := range domain.AllModuleKeys {
		assert.True(t, seen[key], "module %s has no guarded collection", key)
	}
}
