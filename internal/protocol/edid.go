package protocol

import "fmt"

// EDIDProfile is one of the matrix's built-in EDID presets (1-15)
type EDIDProfile int

// Built-in EDID presets
const (
	EDID1080pStereo EDIDProfile = iota + 1
	EDID1080pDolby
	EDID1080pHDAudio
	EDID1080iStereo
	EDID1080iDolby
	EDID1080iHDAudio
	EDID3DStereo
	EDID3DDolby
	EDID3DHDAudio
	EDID4K30Stereo
	EDID4K30Dolby
	EDID4K30HDAudio
	EDIDDVI1024x768
	EDIDDVI1920x1080
	EDIDDVI1920x1200
)

var edidProfileNames = map[EDIDProfile]string{
	EDID1080pStereo:  "1080p Stereo Audio 2.0",
	EDID1080pDolby:   "1080p Dolby/DTS 5.1",
	EDID1080pHDAudio: "1080p HD Audio 7.1",
	EDID1080iStereo:  "1080i Stereo Audio 2.0",
	EDID1080iDolby:   "1080i Dolby/DTS 5.1",
	EDID1080iHDAudio: "1080i HD Audio 7.1",
	EDID3DStereo:     "3D Stereo Audio 2.0",
	EDID3DDolby:      "3D Dolby/DTS 5.1",
	EDID3DHDAudio:    "3D HD Audio 7.1",
	EDID4K30Stereo:   "4K2K30 Stereo Audio 2.0",
	EDID4K30Dolby:    "4K2K30 Dolby/DTS 5.1",
	EDID4K30HDAudio:  "4K2K30 HD Audio 7.1",
	EDIDDVI1024x768:  "DVI 1024x768",
	EDIDDVI1920x1080: "DVI 1920x1080",
	EDIDDVI1920x1200: "DVI 1920x1200",
}

// Valid reports whether p is a known preset
func (p EDIDProfile) Valid() bool {
	return int(p) >= MinEDIDProfile && int(p) <= MaxEDIDProfile
}

func (p EDIDProfile) String() string {
	if name, ok := edidProfileNames[p]; ok {
		return name
	}
	return fmt.Sprintf("EDIDProfile(%d)", int(p))
}

// EDIDProfiles returns every preset in index order
func EDIDProfiles() []EDIDProfile {
	profiles := make([]EDIDProfile, 0, MaxEDIDProfile)
	for p := EDIDProfile(MinEDIDProfile); p <= MaxEDIDProfile; p++ {
		profiles = append(profiles, p)
	}
	return profiles
}
