package architecture

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NoLayer marks a module whose path matches no layer directory.
const NoLayer = -1

// layerOrder maps directory names to clean-architecture layers, innermost
// first. Imports may only point inward.
var layerOrder = map[string]int{
	"domain":         0,
	"entities":       0,
	"core":           0,
	"application":    1,
	"services":       1,
	"usecases":       1,
	"use_cases":      1,
	"interface":      2,
	"interfaces":     2,
	"adapters":       2,
	"controllers":    2,
	"presenters":     2,
	"infrastructure": 3,
	"infra":          3,
	"db":             3,
	"database":       3,
	"external":       3,
	"frameworks":     3,
}

var layerNames = map[int]string{
	0: "domain/core",
	1: "application/services",
	2: "interface/adapters",
	3: "infrastructure",
}

// LayerOf returns the layer of the first path component, compared
// case-insensitively, that names a layer directory, or NoLayer.
func LayerOf(path string) int {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if layer, ok := layerOrder[strings.ToLower(part)]; ok {
			return layer
		}
	}
	return NoLayer
}

// LayerName returns the display name of a layer.
func LayerName(layer int) string {
	if name, ok := layerNames[layer]; ok {
		return name
	}
	return fmt.Sprintf("layer %d", layer)
}
