// Package csg defines constructive solid geometry expression trees and the
// rewriting that brings them into canonical form.
//
// A tree is built bottom-up from leaves (opaque shape tokens) and binary
// operator nodes. Every node is owned by exactly one parent; rewriting never
// edits a node in place but builds replacement subtrees, so a tree published
// after normalization can be read concurrently.
package csg
