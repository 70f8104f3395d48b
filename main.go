// Command erdling is a terminal editor for relational schema diagrams.
package main

import "github.com/travisdwitt/erdling/cmd"

func main() {
	cmd.Execute()
}
