// Package algebra provides a rule-based symbolic expression engine.
//
// Version: 0.1.0
package algebra

// Version is the current version of the goalgebra engine.
const Version = "0.1.0"
