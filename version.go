package cdaengine

// CDARelease identifies a CDA specification release.
type CDARelease string

// Supported CDA releases.
const (
	// R2 is CDA Release 2, the release in production use worldwide.
	R2 CDARelease = "R2"
	// R21 is CDA Release 2.1.
	R21 CDARelease = "R2.1"
)

// String returns the release string.
func (r CDARelease) String() string {
	return string(r)
}

// IsValid returns true if this is a supported CDA release.
func (r CDARelease) IsValid() bool {
	switch r {
	case R2, R21:
		return true
	default:
		return false
	}
}

// releaseConfig holds release-specific configuration.
type releaseConfig struct {
	// TypeIDRoot is the fixed typeId root OID for the release.
	TypeIDRoot string

	// TypeIDExtension is the fixed typeId extension for the release.
	TypeIDExtension string
}

// releaseConfigs maps CDA releases to their configurations.
var releaseConfigs = map[CDARelease]releaseConfig{
	R2: {
		TypeIDRoot:      "2.16.840.1.113883.1.3",
		TypeIDExtension: "POCD_HD000040",
	},
	R21: {
		TypeIDRoot:      "2.16.840.1.113883.1.3",
		TypeIDExtension: "POCD_HD000040",
	},
}

// ReleaseConfig returns the configuration for a CDA release.
func ReleaseConfig(r CDARelease) (typeIDRoot, typeIDExtension string, ok bool) {
	cfg, found := releaseConfigs[r]
	return cfg.TypeIDRoot, cfg.TypeIDExtension, found
}
