//go:build !ebiten

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGUIRequiresBuildTag(t *testing.T) {
	_, err := execute(t, "gui")
	assert.ErrorContains(t, err, "ebiten")
}
