package model

import "time"

// Packument is the registry metadata document for a package. Only the parts
// the tool inspects are decoded; version entries are kept as raw metadata
// because only their presence matters here.
type Packument struct {
	Name     string                    `json:"name"`
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]PackumentEntry `json:"versions"`
	Time     map[string]time.Time      `json:"time"`
}

// PackumentEntry is a single published version inside a packument.
type PackumentEntry struct {
	Version string `json:"version"`
}

// HasVersion reports whether the given version has been published.
func (p *Packument) HasVersion(version string) bool {
	_, ok := p.Versions[version]
	return ok
}

// VersionList returns the published versions without any ordering guarantee.
func (p *Packument) VersionList() []string {
	versions := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		versions = append(versions, v)
	}
	return versions
}

// Modified returns the registry-side modification time, zero if absent.
func (p *Packument) Modified() time.Time {
	return p.Time["modified"]
}
