// Package scenarios builds the golden algorithm fixtures of spec.md §8
// (S1-S6), shared by synth's policy tests, ir's simulator tests and the
// nitta command so that they work on the same concrete inputs.
package scenarios
