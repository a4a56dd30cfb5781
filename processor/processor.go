/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/suparena/docmapper/errors"
	"github.com/suparena/docmapper/registry"
)

// IndexMapExtension is the vendor extension holding a schema's key templates.
const IndexMapExtension = "x-dynamodb-indexmap"

// CollectionExtension optionally names the collection of a schema. The
// schema name is used when it is absent.
const CollectionExtension = "x-docmapper-collection"

type schema struct {
	IndexMap   map[string]string `yaml:"x-dynamodb-indexmap"`
	Collection string            `yaml:"x-docmapper-collection"`
}

type document struct {
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
	// Swagger 2 keeps schemas under definitions.
	Definitions map[string]schema `yaml:"definitions"`
}

// IndexMap is the key layout extracted from one schema.
type IndexMap struct {
	Schema     string
	Collection string
	Templates  map[string]string
}

// ParseIndexMaps extracts the index maps of every schema in an OpenAPI (or
// Swagger 2) document. Schemas without the extension are skipped. The result
// is sorted by collection.
func ParseIndexMaps(r io.Reader) ([]IndexMap, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	var maps []IndexMap
	seen := make(map[string]string)
	collect := func(schemas map[string]schema) error {
		for name, s := range schemas {
			if len(s.IndexMap) == 0 {
				continue
			}
			if s.IndexMap["PK"] == "" {
				return errors.NewConfigurationError("processor", "%s of %s has no PK template", IndexMapExtension, name)
			}
			collection := s.Collection
			if collection == "" {
				collection = name
			}
			if other, dup := seen[collection]; dup {
				return errors.NewConfigurationError("processor", "schemas %s and %s both map collection %s", other, name, collection)
			}
			seen[collection] = name
			maps = append(maps, IndexMap{Schema: name, Collection: collection, Templates: s.IndexMap})
		}
		return nil
	}
	if err := collect(doc.Components.Schemas); err != nil {
		return nil, err
	}
	if err := collect(doc.Definitions); err != nil {
		return nil, err
	}

	sort.Slice(maps, func(i, j int) bool { return maps[i].Collection < maps[j].Collection })
	return maps, nil
}

// Register adds maps to reg.
func Register(reg *registry.IndexMapRegistry, maps []IndexMap) {
	for _, m := range maps {
		reg.RegisterIndexMap(m.Collection, m.Templates)
	}
}

// LoadIndexMaps reads the OpenAPI document at path into a new registry.
func LoadIndexMaps(path string) (*registry.IndexMapRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OpenAPI document: %w", err)
	}
	defer f.Close()

	maps, err := ParseIndexMaps(f)
	if err != nil {
		return nil, err
	}
	reg := registry.NewIndexMapRegistry()
	Register(reg, maps)
	return reg, nil
}
