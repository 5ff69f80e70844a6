package gcodewriter

// Profile defines a post-processor configuration for a target firmware.
// It governs the textual shape of emitted commands (adapted from a CNC
// post-processor profile to FDM firmware dialects): startup/shutdown
// codes, motion mnemonics, comment delimiters, and number formatting.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	StartCode []string `json:"start_code"` // commands at the start of the file
	EndCode   []string `json:"end_code"`   // commands at the end of the file

	HeaterStart string `json:"heater_start"` // e.g. "M104 S%d" (set hotend temp, no wait)
	HeaterWait  string `json:"heater_wait"`  // e.g. "M109 S%d" (set hotend temp, wait)
	FanOn       string `json:"fan_on"`       // e.g. "M106 S%d"
	FanOff      string `json:"fan_off"`      // e.g. "M107"

	AbsoluteMode string `json:"absolute_mode"` // G90 or equivalent
	ExtruderMode string `json:"extruder_mode"` // M82 (absolute extrusion) / M83 (relative)
	RapidMove    string `json:"rapid_move"`    // G0 or equivalent
	FeedMove     string `json:"feed_move"`     // G1 or equivalent
	RetractMove  string `json:"retract_move"`  // G10 firmware retract, or "" to use FeedMove with negative E

	CommentPrefix string `json:"comment_prefix"` // e.g. ";"
	CommentSuffix string `json:"comment_suffix"`

	DecimalPlaces int `json:"decimal_places"`
}

// BuiltinProfiles mirrors the common FDM firmware dialects.
var BuiltinProfiles = []Profile{
	{
		Name:          "Marlin",
		Description:   "Marlin firmware (most desktop FDM printers)",
		StartCode:     []string{"G28", "G92 E0"},
		HeaterWait:    "M109 S%d",
		FanOn:         "M106 S%d",
		FanOff:        "M107",
		AbsoluteMode:  "G90",
		ExtruderMode:  "M83",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M104 S0", "M140 S0", "G0 Z[SafeZ]", "M84"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "RepRapFirmware",
		Description:   "Duet/RepRapFirmware boards",
		StartCode:     []string{"G28", "G92 E0"},
		HeaterWait:    "M109 S%d",
		FanOn:         "M106 S%d",
		FanOff:        "M107",
		AbsoluteMode:  "G90",
		ExtruderMode:  "M83",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M104 S0", "G0 Z[SafeZ]", "M84"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Klipper",
		Description:   "Klipper firmware",
		StartCode:     []string{"G28", "G92 E0"},
		HeaterWait:    "M109 S%d",
		FanOn:         "M106 S%d",
		FanOff:        "M107",
		AbsoluteMode:  "G90",
		ExtruderMode:  "M83",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M104 S0", "G0 Z[SafeZ]", "M84"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic RepRap-flavoured GCode",
		StartCode:     []string{"G28", "G92 E0"},
		HeaterWait:    "M109 S%d",
		FanOn:         "M106 S%d",
		FanOff:        "M107",
		AbsoluteMode:  "G90",
		ExtruderMode:  "M83",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"M104 S0", "G0 Z[SafeZ]", "M84"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// CustomProfiles holds user-defined profiles loaded at runtime, checked
// by GetProfile before falling back to BuiltinProfiles.
var CustomProfiles []Profile

// AllProfiles returns every builtin profile followed by every loaded
// custom profile.
func AllProfiles() []Profile {
	all := make([]Profile, 0, len(BuiltinProfiles)+len(CustomProfiles))
	all = append(all, BuiltinProfiles...)
	all = append(all, CustomProfiles...)
	return all
}

// GetProfile returns a profile by name, checking custom profiles first,
// falling back to the Generic builtin profile if not found.
func GetProfile(name string) Profile {
	for _, p := range CustomProfiles {
		if p.Name == name {
			return p
		}
	}
	for _, p := range BuiltinProfiles {
		if p.Name == name {
			return p
		}
	}
	return BuiltinProfiles[len(BuiltinProfiles)-1]
}

// GetProfileNames returns the names of every available profile.
func GetProfileNames() []string {
	names := make([]string, 0, len(BuiltinProfiles)+len(CustomProfiles))
	for _, p := range AllProfiles() {
		names = append(names, p.Name)
	}
	return names
}
