package config

// ConfigPath is the default location of the YAML config file,
// relative to the working directory of the server process.
const ConfigPath = "config.yaml"
