// Package main provides the entry point for the cragscan CLI.
//
// cragscan crawls the area and route hierarchy of a climbing-route site,
// starting from one area (or route) page, and writes one record per node to
// CSV files and, optionally, a SQLite database.
//
// Usage:
//
//	cragscan crawl [root-url]
//	cragscan history
//
// See --help for all available options.
package main

// main is the entry point for cragscan.
func main() {
	Execute()
}
