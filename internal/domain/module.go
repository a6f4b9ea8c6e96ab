package domain

// ModuleKey identifies one independently sharable category of trainee data.
type ModuleKey string

const (
	ModuleWorkouts  ModuleKey = "workouts"
	ModuleRecovery  ModuleKey = "recovery"
	ModuleNutrition ModuleKey = "nutrition"
	ModuleWellbeing ModuleKey = "wellbeing"
	ModuleProgress  ModuleKey = "progress"
	ModuleWearables ModuleKey = "wearables"
)

// AllModuleKeys lists every module key in a stable order.
var AllModuleKeys = []ModuleKey{
	ModuleWorkouts,
	ModuleRecovery,
	ModuleNutrition,
	ModuleWellbeing,
	ModuleProgress,
	ModuleWearables,
}

// ModulePermissions maps every ModuleKey to a boolean. Once normalized it is
// a total function: no partial or missing keys.
type ModulePermissions map[ModuleKey]bool

// NoModules returns an all-false permission set. This is what a Grant starts
// with on invite acceptance: the trainee must explicitly opt in per module.
func NoModules() ModulePermissions {
	perms := make(ModulePermissions, len(AllModuleKeys))
	for _, key := range AllModuleKeys {
		perms[key] = false
	}
	return perms
}

// Normalize returns a copy with every known module key present and any
// unknown keys dropped.
func (p ModulePermissions) Normalize() ModulePermissions {
	normalized := NoModules()
	for _, key := range AllModuleKeys {
		if p[key] {
			normalized[key] = true
		}
	}
	return normalized
}

// Clone returns an independent copy.
func (p ModulePermissions) Clone() ModulePermissions {
	clone := make(ModulePermissions, len(p))
	for key, enabled := range p {
		clone[key] = enabled
	}
	return clone
}

// IsValidModuleKey reports whether the given key names a known module.
func IsValidModuleKey(key ModuleKey) bool {
	for _, known := range AllModuleKeys {
		if key == known {
			return true
		}
	}
	return false
}

// DefaultModulesForRole returns the advisory per-role module bundle. The
// accept-invite flow deliberately does not apply it; grants are persisted
// all-false and the trainee opts in per module afterwards.
func DefaultModulesForRole(role Role) ModulePermissions {
	perms := NoModules()
	switch role {
	case RoleTrainer:
		perms[ModuleWorkouts] = true
		perms[ModuleRecovery] = true
		perms[ModuleProgress] = true
	case RoleNutritionist:
		perms[ModuleNutrition] = true
	case RoleCounsellor:
		perms[ModuleWellbeing] = true
	}
	return perms
}
