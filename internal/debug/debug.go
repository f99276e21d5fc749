package debug

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Debug levels
const (
	LevelOff     = 0 // No output
	LevelInfo    = 1 // Important info (marker count, viewer setup)
	LevelLive    = 2 // Live info (view changes, marker placements)
	LevelVerbose = 3 // Verbose (projection details, FOV, angles)
	LevelTrace   = 4 // Trace (event subscriptions, very low level)
)

var (
	level  int
	logger *log.Logger
)

// Init initializes the debug system with a level (0-4).
// 0 = no output
// 1 = important info (marker count, viewer setup)
// 2 = live info (view changes, placements)
// 3 = verbose (projection details, FOV, angles)
// 4 = trace (event subscriptions, very low level)
func Init(debugLevel int) {
	level = debugLevel
	if level > LevelOff {
		logger = log.New(os.Stdout, "[PanoMark] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output, e.g. to mirror it into the web status
// stream. No-op when debug is off.
func SetOutput(w io.Writer) {
	if logger != nil {
		logger.SetOutput(w)
	}
}

// Level returns the current debug level.
func Level() int {
	return level
}

// IsEnabled returns true if debug level is >= the requested level.
func IsEnabled(minLevel int) bool {
	return level >= minLevel
}

// --- Level 1 functions (Info): important info ---

// Info prints a level 1 message (important info).
func Info(format string, args ...interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Summary prints an important summary (level 1).
func Summary(title string) {
	if level >= LevelOff && logger != nil {
		logger.Printf("═══════════════════════════════════════")
		logger.Printf("  %s", title)
		logger.Printf("═══════════════════════════════════════")
	}
}

// Markers prints how many markers are bound to the viewer (level 1).
func Markers(count int) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO] Markers bound: %d", count)
	}
}

// Value prints a named value in formatted form (level 1).
func Value(name string, value interface{}) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[INFO]   %s = %v", name, value)
	}
}

// --- Level 2 functions (Live): real-time info ---

// Live prints a level 2 message (live info).
func Live(format string, args ...interface{}) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] "+format, args...)
	}
}

// View prints a viewer state change (level 2).
func View(heading, pitch, zoom float64) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] View: heading=%.2f° pitch=%.2f° zoom=%.2f", heading, pitch, zoom)
	}
}

// Place prints a marker placement (level 2).
func Place(id string, left, top float64) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Marker %s placed at (%.1f, %.1f)", id, left, top)
	}
}

// Hide prints a marker leaving the visible frustum (level 2).
func Hide(id string) {
	if level >= LevelLive && logger != nil {
		logger.Printf("[LIVE] Marker %s hidden (outside frustum)", id)
	}
}

// --- Level 3 functions (Verbose): everything ---

// Verbose prints a level 3 message (verbose).
func Verbose(format string, args ...interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] "+format, args...)
	}
}

// Projection prints the inputs and outcome of a projection (level 3).
func Projection(id string, heading, pitch, fov float64, visible bool) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Project %s: heading=%.2f° pitch=%.2f° fov=%.2f° visible=%v",
			id, heading, pitch, fov, visible)
	}
}

// PrintStruct prints a struct in formatted form (level 3).
func PrintStruct(name string, v interface{}) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] %s: %+v", name, v)
	}
}

// Section prints a section separator (level 3).
func Section(name string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		logger.Printf("  %s", name)
		logger.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	}
}

// Step prints a numbered step (level 3).
func Step(num int, description string) {
	if level >= LevelVerbose && logger != nil {
		logger.Printf("[VERBOSE] Step %d: %s", num, description)
	}
}

// --- Level 4 functions (Trace): very low level ---

// Trace prints a level 4 message (trace, subscriptions).
func Trace(format string, args ...interface{}) {
	if level >= LevelTrace && logger != nil {
		logger.Printf("[TRACE] "+format, args...)
	}
}

// --- General functions ---

// Error prints a debug error (level 1+).
func Error(err error) {
	if level >= LevelInfo && logger != nil {
		logger.Printf("[ERROR] %v", err)
	}
}

// Fmt is a helper function that returns a formatted string
// only if debug is enabled (to avoid unnecessary allocations).
func Fmt(format string, args ...interface{}) string {
	if level > 0 {
		return fmt.Sprintf(format, args...)
	}
	return ""
}
