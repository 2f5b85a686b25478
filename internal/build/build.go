// Package build carries version information injected at link time.
package build

import "time"

var (
	commit  = ""
	date    = ""
	version = "dev"
)

var Current Build

type Build struct {
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Commit  string    `json:"commit,omitempty"`
	Date    time.Time `json:"date,omitempty"`
}

func init() {
	parsed, _ := time.Parse(time.RFC3339, date)
	Current = Build{
		Name:    "monotile",
		Version: version,
		Commit:  commit,
		Date:    parsed,
	}
}
