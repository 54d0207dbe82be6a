// Global arenadb config.
package config

// Name of the database.
const DBName = "arenadb"

// Prompt printed by REPL.
const Prompt = DBName + "> "

// Default capacity (in bytes) of a freshly created arena.
const DefaultArenaCapacity int32 = 1 << 20

// Name of the operation trace file.
const TraceFileName = "arenadb.trace"

// Return prompt if requested, else "".
func GetPrompt(flag bool) string {
	if flag {
		return Prompt
	}
	return ""
}
