package bus

// Command asks the window manager loop to run one action. Name must be one
// of CommandNames; Arg is a 1-based tag index for the tag commands and a
// signed step count for the rest that take one.
type Command struct {
	Name string
	Arg  int
}

var CommandNames = []string{
	"quit",
	"focus",
	"move",
	"zoom",
	"kill",
	"toggle-floating",
	"view",
	"view-prev",
	"tag",
	"toggle-tag",
	"nmaster",
	"mfact",
	"dump",
}

// ConfigFileChanged reports that the config file was rewritten on disk.
// Config is read once at startup; this only surfaces "restart to apply".
type ConfigFileChanged struct {
	Path string
}

// StateChanged carries a snapshot of the window manager state after an
// update. Snapshots are plain data; consumers never touch live state.
type StateChanged struct {
	State State
}

type (
	State struct {
		Width     int           `json:"width"`
		Height    int           `json:"height"`
		ActiveTag int           `json:"active_tag"`
		PrevTag   int           `json:"prev_tag"`
		Focused   string        `json:"focused,omitempty"`
		Tags      []StateTag    `json:"tags"`
		Windows   []StateWindow `json:"windows"`
	}

	StateTag struct {
		Index        int      `json:"index"`
		MasterCount  int      `json:"master_count"`
		MasterFactor float64  `json:"master_factor"`
		Tiled        []string `json:"tiled,omitempty"`
		Floating     []string `json:"floating,omitempty"`
	}

	StateWindow struct {
		Surface  string    `json:"surface"`
		Geometry StateRect `json:"geometry"`
		Floating bool      `json:"floating"`
		Focused  bool      `json:"focused"`
		Urgent   bool      `json:"urgent"`
		Tags     []int     `json:"tags"`
	}

	StateRect struct {
		X int `json:"x"`
		Y int `json:"y"`
		W int `json:"w"`
		H int `json:"h"`
	}
)
