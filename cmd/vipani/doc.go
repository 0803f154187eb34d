// Package cmd/vipani provides the service CLI.
//
// Install:
//
//	go install github.com/shashiranjanraj/vipani/cmd/vipani@latest
//
// Then:
//
//	vipani serve           # start the HTTP server
//	vipani index:ensure    # create the search index and mapping
//	vipani seed            # seed categories
//	vipani route:list      # list API routes
package main
