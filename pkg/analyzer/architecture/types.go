package architecture

import "github.com/panbanda/pylens/internal/fileproc"

// Module is one parsed file as a dependency-graph vertex.
type Module struct {
	// Key is the file stem. Files sharing a stem collapse into one vertex.
	Key string `json:"key" toon:"key"`
	// Name is the dotted path relative to the analysis root.
	Name      string   `json:"name" toon:"name"`
	Path      string   `json:"path" toon:"path"`
	Imports   []string `json:"imports" toon:"imports"`
	Layer     int      `json:"layer" toon:"layer"`
	LayerName string   `json:"layer_name,omitempty" toon:"layer_name,omitempty"`
}

// Dependency lists the local modules one module imports.
type Dependency struct {
	Module    string   `json:"module" toon:"module"`
	DependsOn []string `json:"depends_on" toon:"depends_on"`
}

// Violation is an import from an inner layer into an outer one.
type Violation struct {
	Importer  string `json:"importer" toon:"importer"`
	Imported  string `json:"imported" toon:"imported"`
	FromLayer int    `json:"from_layer" toon:"from_layer"`
	ToLayer   int    `json:"to_layer" toon:"to_layer"`
}

// Rank is a module's PageRank centrality in the dependency graph.
type Rank struct {
	Module   string  `json:"module" toon:"module"`
	PageRank float64 `json:"pagerank" toon:"pagerank"`
}

// Analysis is the result of an architecture run over a file set.
type Analysis struct {
	Root       string                     `json:"root" toon:"root"`
	FileCount  int                        `json:"file_count" toon:"file_count"`
	Modules    []Module                   `json:"modules" toon:"modules"`
	Graph      []Dependency               `json:"graph" toon:"graph"`
	Cycles     [][]string                 `json:"cycles" toon:"cycles"`
	Violations []Violation                `json:"violations" toon:"violations"`
	Components [][]string                 `json:"components,omitempty" toon:"components,omitempty"`
	Centrality []Rank                     `json:"centrality,omitempty" toon:"centrality,omitempty"`
	Skipped    []string                   `json:"skipped,omitempty" toon:"skipped,omitempty"`
	Failures   []fileproc.ProcessingError `json:"-" toon:"-"`
}
