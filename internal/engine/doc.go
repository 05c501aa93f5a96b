// Package engine contains the game loop and simulation logic.
// This is the heartbeat of the deep-core drill.
//
// ARCHITECTURAL RULE: systems never hold game state. Every transition takes a
// player.State and returns the next one, or returns an error and the state it
// was given. The Engine is the only owner of the live state and applies one
// transition at a time.
package engine
