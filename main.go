package main

import "github.com/Stargazers-Consulting-LLC/creampie-sub000/cmd"

func main() {
	cmd.Execute()
}
