// Package teamroster implements the Team Roster query use case.
//
// It projects the team's name, its status, and its active drivers from the events tagged with the team.
// This is a read-only operation, it queries the same EventLog the command handlers append to.
package teamroster
