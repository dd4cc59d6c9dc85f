// Package testdoubles provides spies for every collaborator interface of the cookiehook packages.
//
// All spies are safe for concurrent use. Spies constructed with recordCalls=false
// accept every call without capturing anything.
package testdoubles
