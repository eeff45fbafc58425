package mcpserver

import (
	"encoding/json"
)

// manifestSchema is the server.json schema version the manifest follows.
const manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"

// Manifest is the MCP registry description of the server (server.json).
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

// Repository locates the source code.
type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package tells a client how to launch the server.
type Package struct {
	RegistryType         string        `json:"registryType"`
	Identifier           string        `json:"identifier"`
	Version              string        `json:"version,omitempty"`
	PackageArguments     []Argument    `json:"packageArguments,omitempty"`
	EnvironmentVariables []EnvVariable `json:"environmentVariables,omitempty"`
	Transport            Transport     `json:"transport"`
}

// Argument is a command-line argument passed to the binary.
type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

// EnvVariable documents an environment variable the server reads.
type EnvVariable struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsRequired  bool   `json:"isRequired"`
}

// Transport is how the client talks to the server.
type Transport struct {
	Type string `json:"type"`
}

// GenerateManifest returns the indented server.json for version.
func GenerateManifest(version string) ([]byte, error) {
	if version == "" {
		version = "0.0.0"
	}

	manifest := Manifest{
		Schema:      manifestSchema,
		Name:        "io.github.panbanda/pylens",
		Title:       "pylens",
		Description: "Python code analysis: complexity, import cycles, layer violations, naming and duplication",
		Version:     version,
		Repository: &Repository{
			URL:    "https://github.com/panbanda/pylens",
			Source: "github",
		},
		Packages: []Package{
			{
				RegistryType: "oci",
				Identifier:   "ghcr.io/panbanda/pylens:" + version,
				PackageArguments: []Argument{
					{Type: "positional", Value: "mcp"},
				},
				EnvironmentVariables: []EnvVariable{
					{Name: "PYLENS_CONFIG", Description: "Path to a pylens.toml, .yaml or .json config file"},
				},
				Transport: Transport{Type: "stdio"},
			},
		},
	}

	return json.MarshalIndent(manifest, "", "  ")
}
