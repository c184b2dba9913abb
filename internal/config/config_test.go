package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequiresInputFile(t *testing.T) {
	c := Default()
	assert.Error(t, c.Validate())
}

func TestValidateRejectsSmallCacheSize(t *testing.T) {
	c := Default()
	c.InputFile = "model.s64"
	c.CacheSize = 2
	assert.Error(t, c.Validate())
}

func TestValidateAcceptsDefaults(t *testing.T) {
	c := Default()
	c.InputFile = "model.s64"
	assert.NoError(t, c.Validate())
}
