// Package services implements the operations behind the terminal menus. Each
// function takes an open store handle (scoped by the caller through
// db.Manager.With) or, for the two-phase upload/download flows, the manager
// itself so every phase can hold its own short-lived handle.
package services

import "time"

// TimeLayout is the store's timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

func now() string {
	return time.Now().UTC().Format(TimeLayout)
}
