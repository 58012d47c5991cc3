// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes every cached record to w as a YAML document, for
// inspection and external tooling.
func (c *Cache) ExportYAML(w io.Writer) error {
	recs, err := c.All()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
