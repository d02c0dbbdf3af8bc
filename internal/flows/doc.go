// Package flows contains the engine's orchestration logic, decoupled from
// the root package through dependency structs of function values. The root
// engine builds one Deps value at construction time and delegates to the
// matching flow; flows never import the root package.
package flows
