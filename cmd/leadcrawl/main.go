// Package main provides the entry point for the leadcrawl CLI.
//
// leadcrawl crawls company websites and extracts business leads: contact
// emails, phone numbers, people with their titles, social profiles, the
// technology stack, forms and page metadata.
//
// Usage:
//
//	leadcrawl crawl https://acme.example
//	leadcrawl compare acme.example
//	leadcrawl history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
