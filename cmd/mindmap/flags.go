package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose    = "verbose"
	FlagConfig     = "config"
	FlagLogFile    = "log-file"
	FlagStateFile  = "state-file"
	FlagEventsFile = "events-file"

	// Source flags
	FlagTopic     = "topic"
	FlagStrict    = "strict"
	FlagDirection = "direction"
	FlagExpand    = "expand"
	FlagToggle    = "toggle"

	// View command flags
	FlagFullscreen = "fullscreen"
	FlagInline     = "inline"
	FlagNoMouse    = "no-mouse"
	FlagWatch      = "watch"

	// Export command flags
	FlagFormat  = "format"
	FlagOut     = "out"
	FlagDataURI = "data-uri"

	// Serve command flags
	FlagAddr = "addr"

	// Fetch command flags
	FlagOutput = "output"
	FlagPretty = "pretty"

	// Init command flags
	FlagDryRun  = "dry-run"
	FlagForce   = "force"
	FlagMinimal = "minimal"
	FlagGlobal  = "global"

	// Events command flags
	FlagFollow = "follow"
	FlagCount  = "count"
)
