package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDatabase(t *testing.T) {
	got, err := withDatabase("postgres://user:pw@localhost:5432/postgres?sslmode=disable", "bistro_test_1")
	require.NoError(t, err)
	assert.Equal(t, "postgres://user:pw@localhost:5432/bistro_test_1?sslmode=disable", got)
}
