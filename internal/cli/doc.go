// Package cli turns lessonplay's command-line arguments into an app.Config.
// It owns flag parsing, input validation and process exit codes; everything
// after a successful Parse is the app package's business.
package cli
