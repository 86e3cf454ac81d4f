// Package util provides small generic data structures
package util
