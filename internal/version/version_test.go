// ABOUTME: Tests for version constants
// ABOUTME: Asserts the actual driftsync product/manufacturer values and version subcommand output shape
package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductAndManufacturerValues(t *testing.T) {
	assert.Equal(t, "driftsync", Product)
	assert.Equal(t, "driftsync-project", Manufacturer)
}

func TestVersionDefaultsToDev(t *testing.T) {
	// Unless overridden via -ldflags "-X .../version.Version=...", the
	// build leaves this at its zero-information default.
	assert.Equal(t, "dev", Version)
}

func TestVersionBounds(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.LessOrEqual(t, len(Version), 100, "Version string is unreasonably long")
}

func TestVersionLine(t *testing.T) {
	// This is the exact format cmd/driftsyncd and cmd/driftsync-client's
	// version subcommands print.
	got := fmt.Sprintf("%s %s (%s)", Product, Version, Manufacturer)
	assert.Equal(t, "driftsync dev (driftsync-project)", got)
}

func TestVersionNotPlaceholder(t *testing.T) {
	placeholders := []string{"TODO", "FIXME", "XXX", "placeholder"}

	for _, placeholder := range placeholders {
		assert.NotEqual(t, placeholder, Version)
		assert.NotEqual(t, placeholder, Product)
		assert.NotEqual(t, placeholder, Manufacturer)
	}
}
