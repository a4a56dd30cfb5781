/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docmapper/errors"
)

const openAPIDoc = `
openapi: 3.0.3
components:
  schemas:
    Gallery:
      type: object
      x-docmapper-collection: galleries
      x-dynamodb-indexmap:
        PK: "GALLERY#{_id}"
        SK: "GALLERY#{_id}"
    User:
      type: object
      x-dynamodb-indexmap:
        PK: "USER#{_id}"
        SK: "PROFILE"
        GSI1PK: "EMAIL#{email}"
    Point:
      type: object
      properties:
        x:
          type: number
`

func TestParseIndexMaps(t *testing.T) {
	maps, err := ParseIndexMaps(strings.NewReader(openAPIDoc))
	require.NoError(t, err)
	require.Len(t, maps, 2)

	assert.Equal(t, IndexMap{
		Schema:     "User",
		Collection: "User",
		Templates:  map[string]string{"PK": "USER#{_id}", "SK": "PROFILE", "GSI1PK": "EMAIL#{email}"},
	}, maps[0])
	assert.Equal(t, "galleries", maps[1].Collection)
	assert.Equal(t, "Gallery", maps[1].Schema)
}

func TestParseIndexMapsSwagger2(t *testing.T) {
	maps, err := ParseIndexMaps(strings.NewReader(`
swagger: "2.0"
definitions:
  Image:
    x-dynamodb-indexmap:
      PK: "IMAGE#{_id}"
`))
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, "Image", maps[0].Collection)
}

func TestParseIndexMapsErrors(t *testing.T) {
	t.Run("missing PK", func(t *testing.T) {
		_, err := ParseIndexMaps(strings.NewReader(`
components:
  schemas:
    Gallery:
      x-dynamodb-indexmap:
        SK: "GALLERY#{_id}"
`))
		assert.True(t, errors.IsConfigurationError(err))
	})

	t.Run("duplicate collection", func(t *testing.T) {
		_, err := ParseIndexMaps(strings.NewReader(`
components:
  schemas:
    A:
      x-docmapper-collection: things
      x-dynamodb-indexmap: {PK: "A#{_id}"}
    B:
      x-docmapper-collection: things
      x-dynamodb-indexmap: {PK: "B#{_id}"}
`))
		assert.True(t, errors.IsConfigurationError(err))
		assert.Contains(t, err.Error(), "things")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseIndexMaps(strings.NewReader("components: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("empty document", func(t *testing.T) {
		maps, err := ParseIndexMaps(strings.NewReader(""))
		assert.NoError(t, err)
		assert.Empty(t, maps)
	})
}

func TestLoadIndexMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(openAPIDoc), 0o600))

	reg, err := LoadIndexMaps(path)
	require.NoError(t, err)

	m, ok := reg.GetIndexMap("galleries")
	require.True(t, ok)
	assert.Equal(t, "GALLERY#{_id}", m["PK"])

	_, ok = reg.GetIndexMap("Point")
	assert.False(t, ok)

	_, err = LoadIndexMaps(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
