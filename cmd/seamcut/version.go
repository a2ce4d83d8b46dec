package main

import "fmt"

type versionCmd struct{ *root }

func (v *versionCmd) Run() error {
	line := fmt.Sprintf("%s version %s", v.program, version)
	if commit != "" {
		line += " (" + commit
		if date != "" {
			line += ", " + date
		}
		line += ")"
	}
	fmt.Fprintln(v.out(), line)
	return nil
}
