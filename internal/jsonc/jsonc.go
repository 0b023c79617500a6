// Package jsonc reads JSON documents that may contain comments and
// trailing commas, as allowed in titan.json and bun.lock.
package jsonc

import (
	"encoding/json"

	"github.com/tailscale/hujson"
)

// Standardize strips comments and trailing commas so the result can be
// handed to encoding/json. Comments become whitespace, so byte offsets of
// the surrounding values stay usable for diagnostics.
func Standardize(data []byte) ([]byte, error) {
	ast, err := hujson.Parse(data)
	if err != nil {
		return nil, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}

// Unmarshal decodes JSONC data into v.
func Unmarshal(data []byte, v any) error {
	std, err := Standardize(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(std, v)
}
