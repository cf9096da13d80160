//revive:disable-next-line:var-naming
package util

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/clonos/dashboard-backend/model"
)

// SupportedSchemaRange is the range of export schema versions accepted on import.
const SupportedSchemaRange = "^1.0.0"

// CheckSchemaVersion reports whether an exported document with the given
// schema version can be imported. Documents without a version predate
// versioning and are accepted.
func CheckSchemaVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schemaVersion %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(SupportedSchemaRange)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("schemaVersion %s is not supported (expected %s, current %s)", version, SupportedSchemaRange, model.ExportSchemaVersion)
	}
	return nil
}
