package config

import "github.com/namsral/flag"

type Config struct {
	ListenAddr      string
	DataDir         string
	PackPath        string
	DecisionLogPath string
	Debug           bool
}

func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSet("centaur", flag.ContinueOnError)
	fs.StringVar(&c.ListenAddr, "listen-addr", ":8090", "address for the api server to listen on")
	fs.StringVar(&c.DataDir, "data-dir", "./data/weights", "directory holding the weight store; empty for an in-memory store")
	fs.StringVar(&c.PackPath, "pack-path", "", "weight pack to install at startup, if any")
	fs.StringVar(&c.DecisionLogPath, "decision-log-path", "", "sqlite file for the decision audit log; empty disables it")
	fs.BoolVar(&c.Debug, "debug", false, "log at debug level")
	err := fs.Parse(args)
	return err
}
