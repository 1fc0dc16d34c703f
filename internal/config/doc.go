// Package config loads chronoline settings from YAML files and the environment.
//
// Settings are resolved in increasing priority: built-in defaults, the global
// config file ($CHRONOLINE_HOME/config.yaml), a project overlay
// (.chronoline/config.yaml, merged section by section), environment variables,
// and finally CLI flags applied by the caller.
package config
