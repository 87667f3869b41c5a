package cache

import (
	"testing"
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	la, err := LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", la.String())

	again, err := LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	assert.Same(t, la, again)

	_, err = LoadLocation("Mars/Olympus_Mons")
	assert.True(t, ierr.IsConfiguration(err))
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "location:v1:Europe/Paris", GenerateKey(PrefixLocation, "Europe/Paris"))
	assert.Equal(t, "location:v1:a:1", GenerateKey(PrefixLocation, "a", 1))
}
