package commands

import (
	"fmt"

	"github.com/prettyirrelevant/eniola.wtf/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(g *Global) error {
	info := version.Get()
	_, _ = fmt.Fprintf(g.Out, "site %s\ncommit: %s\nbuilt: %s\ngo: %s\n",
		info.Version, info.GitCommit, info.BuildTime, info.GoVersion)
	return nil
}
