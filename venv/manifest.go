package venv

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest describes the Python package set installed into the
// environment and the modules imported by the sanity check.
type Manifest struct {
	Packages []string `yaml:"packages"`
	Imports  []string `yaml:"imports"`
}

// DefaultManifest returns the package set the sync test CI has always
// installed: the Blockfrost API client, the MySQL client, the HTTP
// client, the system metrics library and the data frame library. The
// import check covers the HTTP client and the data frame library.
func DefaultManifest() Manifest {
	return Manifest{
		Packages: []string{
			"blockfrost-python",
			"pymysql",
			"requests",
			"psutil",
			"pandas",
		},
		Imports: []string{
			"requests",
			"pandas",
		},
	}
}

// LoadManifest reads a package manifest from a YAML file.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	contents, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return m, errors.Wrapf(err, "failed to parse manifest %s", path)
	}
	if err := m.Validate(); err != nil {
		return m, errors.Wrapf(err, "invalid manifest %s", path)
	}
	return m, nil
}

// Validate checks the manifest is usable.
func (m Manifest) Validate() error {
	if len(m.Packages) == 0 {
		return errors.New("manifest must list at least one package")
	}
	for _, p := range m.Packages {
		if p == "" {
			return errors.New("manifest contains an empty package name")
		}
	}
	return nil
}
