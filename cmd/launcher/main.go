// Command launcher starts the configured game build, waits for it to exit,
// and keeps a history of what it printed.
package main

func main() {
	Execute()
}
