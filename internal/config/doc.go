// Package config provides the configuration of a cragscan run.
// It defines the crawl root, politeness and concurrency limits, output
// destinations, and login credentials, together with the loaders that fill
// them from a YAML file and the environment.
package config
