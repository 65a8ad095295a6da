// Package rule decides whether a folder looks like a given kind of project,
// by using CEL (Common Expression Language) expressions.
//
// The expressions have access to the folder's file paths, their content, and
// directory information, allowing for flexible matching logic.
package rule
