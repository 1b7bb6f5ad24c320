package cmd

// Version is injected at build time via ldflags:
// go build -ldflags "-X github.com/handleui/compute-risk/cmd.Version=1.2.3"
var Version = "dev"
