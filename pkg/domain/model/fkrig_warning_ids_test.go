package model

import "testing"

func TestFkRigWarningIDsAreNonEmptyAndUnique(t *testing.T) {
	warningIDs := []string{
		FkRigWarningControlMissing,
		FkRigWarningControlInactive,
		FkRigWarningControlTypeMismatch,
		FkRigWarningPoseBoneMissing,
		FkRigWarningPoseCurveMissing,
		FkRigWarningChannelMissing,
		FkRigWarningBakeCancelled,
		FkRigWarningCollapseRolledBack,
		FkRigWarningControlSuffixMissing,
	}

	seen := map[string]struct{}{}
	for _, warningID := range warningIDs {
		if warningID == "" {
			t.Fatalf("warning id should not be empty")
		}
		if _, exists := seen[warningID]; exists {
			t.Fatalf("warning id should be unique: %s", warningID)
		}
		seen[warningID] = struct{}{}
	}
}
