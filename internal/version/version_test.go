package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_IncludesBuildMetadata(t *testing.T) {
	assert.Equal(t, "perfbench dev (commit unknown, built unknown)", String("perfbench"))
}
