package version

import (
	"fmt"
	"strings"
)

// Set at build time with -ldflags "-X".
var (
	App       = "AppLink"
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	BuildOS   string
	BuildArch string
)

// Info returns a one-line description such as "AppLink v1.2.0 (abc1234)".
func Info() string {
	var b strings.Builder
	b.WriteString(App)
	b.WriteString(" ")
	b.WriteString(getVersion())
	if GitCommit != "" {
		fmt.Fprintf(&b, " (%s)", getShortCommit())
	}
	return b.String()
}

// PrintVersion prints the version information
func PrintVersion() {
	fmt.Println(Info())
	for _, line := range [][2]string{
		{"Build time", BuildTime},
		{"Go version", GoVersion},
		{"Built for", platform()},
	} {
		if line[1] != "" {
			fmt.Printf("%s: %s\n", line[0], line[1])
		}
	}
}

func platform() string {
	if BuildOS == "" || BuildArch == "" {
		return ""
	}
	return BuildOS + "/" + BuildArch
}

func getShortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

func getVersion() string {
	if Version != "" {
		return Version
	}
	return "dev"
}
